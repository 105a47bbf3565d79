// Package access holds the authorization policy: one central rule table
// deciding whether an identity may perform an action on a resource.
package access

import (
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/user"
)

var ErrPermissionDenied = errors.New("permission denied")

type Action string

const (
	ActionCreate          Action = "create"
	ActionRetrieve        Action = "retrieve"
	ActionList            Action = "list"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionSubmit          Action = "submit"
	ActionViewPerformance Action = "view_performance"
)

type Kind string

const (
	KindCourse          Kind = "course"
	KindAssignment      Kind = "assignment"
	KindQuiz            Kind = "quiz"
	KindLecturerProfile Kind = "lecturer_profile"
	KindStudentProfile  Kind = "student_profile"
)

// Resource identifies the target of an action. OwnerID is the owning
// lecturer's user ID for catalog kinds, and the profile's user ID for
// profile kinds. It is empty for create actions.
type Resource struct {
	Kind    Kind
	OwnerID string
}

func (k Kind) isCatalog() bool {
	return k == KindCourse || k == KindAssignment || k == KindQuiz
}

func isRead(action Action) bool {
	return action == ActionRetrieve || action == ActionList
}

func isWrite(action Action) bool {
	return action == ActionCreate || action == ActionUpdate || action == ActionDelete
}

// Can reports whether usr may perform action on res. An identity without an
// ID is unauthenticated and may do nothing.
func Can(usr user.User, action Action, res Resource) bool {
	if usr.ID == "" {
		return false
	}
	if usr.IsSuperuser() {
		return true
	}

	switch {
	case res.Kind.isCatalog() && isWrite(action):
		return usr.IsLecturer() && (action == ActionCreate || res.OwnerID == usr.ID)

	case res.Kind.isCatalog() && isRead(action):
		return true

	case res.Kind == KindLecturerProfile && isWrite(action):
		return usr.IsLecturer() && res.OwnerID == usr.ID

	case res.Kind == KindStudentProfile && isWrite(action):
		return usr.IsStudent() && res.OwnerID == usr.ID

	case (res.Kind == KindLecturerProfile || res.Kind == KindStudentProfile) && isRead(action):
		return res.OwnerID == "" || res.OwnerID == usr.ID

	case res.Kind == KindQuiz && action == ActionSubmit:
		return usr.IsStudent()

	case res.Kind == KindCourse && action == ActionViewPerformance:
		return usr.IsLecturer() && res.OwnerID == usr.ID
	}
	return false
}

// Check is Can returning ErrPermissionDenied on refusal.
func Check(usr user.User, action Action, res Resource) error {
	if !Can(usr, action, res) {
		return ErrPermissionDenied
	}
	return nil
}
