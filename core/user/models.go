package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/neuropeak/backend/core"
)

// Roles
const (
	RoleStudent   = "student"
	RoleLecturer  = "lecturer"
	RoleSuperuser = "superuser"
)

var (
	AllRoles = []string{RoleStudent, RoleLecturer, RoleSuperuser}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Lecturer", Value: RoleLecturer},
		{Name: "Superuser", Value: RoleSuperuser},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LecturerProfile holds the attributes that only exist for lecturer accounts.
type LecturerProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Department     string    `json:"department"`
	Specialization string    `json:"specialization"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// StudentProfile holds the attributes that only exist for student accounts.
type StudentProfile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Program       string    `json:"program"`
	YearOfStudy   int       `json:"year_of_study"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// User is an account identity tagged with a single role. Role-specific
// attributes live in the matching profile variant; a User never carries the
// other role's profile. Superusers carry no profile at all.
type User struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	IsActive     bool             `json:"is_active"`
	Role         string           `json:"role"`
	Lecturer     *LecturerProfile `json:"lecturer_profile,omitempty"`
	Student      *StudentProfile  `json:"student_profile,omitempty"`
	PasswordHash []byte           `json:"-"`
	CreatedAt    time.Time        `json:"created_at"` // UTC
	UpdatedAt    time.Time        `json:"updated_at"` // UTC
	LastLogin    time.Time        `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool   { return u.Role == RoleStudent }
func (u *User) IsLecturer() bool  { return u.Role == RoleLecturer }
func (u *User) IsSuperuser() bool { return u.Role == RoleSuperuser }

// setRole assigns the role and swaps the profile variant accordingly: the
// previous role's profile is dropped and a fresh variant is attached so the
// one-profile-per-role invariant always holds.
func (u *User) setRole(role string) {
	u.Role = role
	switch role {
	case RoleLecturer:
		u.Student = nil
		if u.Lecturer == nil {
			u.Lecturer = &LecturerProfile{UserID: u.ID}
		}
	case RoleStudent:
		u.Lecturer = nil
		if u.Student == nil {
			u.Student = &StudentProfile{UserID: u.ID}
		}
	default:
		u.Lecturer = nil
		u.Student = nil
	}
}

// NewLecturerProfile contains the lecturer attributes accepted at registration.
type NewLecturerProfile struct {
	Department     string `json:"department" validate:"required"`
	Specialization string `json:"specialization" validate:"required"`
	Bio            string `json:"bio"`
}

// NewStudentProfile contains the student attributes accepted at registration.
type NewStudentProfile struct {
	StudentNumber string `json:"student_number" validate:"required"`
	Program       string `json:"program" validate:"required"`
	YearOfStudy   int    `json:"year_of_study" validate:"required,min=1"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string              `json:"name" validate:"required"`
	Email           string              `json:"email" validate:"required,email"`
	Password        string              `json:"password" validate:"required"`
	PasswordConfirm string              `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string              `json:"role" validate:"omitempty,role"`
	IsSuperuser     bool                `json:"is_superuser"`
	Lecturer        *NewLecturerProfile `json:"lecturer_profile,omitempty"`
	Student         *NewStudentProfile  `json:"student_profile,omitempty"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(ctx, nu.Email)
}

// role resolves the effective role: a superuser flag wins over any supplied
// role value; an empty role defaults to student.
func (nu NewUser) role() string {
	if nu.IsSuperuser {
		return RoleSuperuser
	}
	if nu.Role == "" {
		return RoleStudent
	}
	return nu.Role
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, validate *validator.Validate, origUsr User, svc *Service) error {
	uu.Name = core.CleanString(uu.Name)
	if uu.Name == "" {
		uu.Name = origUsr.Name
	}

	uu.Email = core.CleanString(uu.Email, true /* lower */)
	if uu.Email == "" {
		uu.Email = origUsr.Email
	}

	uu.Role = core.CleanString(uu.Role, true /* lower */)
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(ctx, uu.Email, origUsr)
}

// UpdateLecturerProfile defines the editable lecturer attributes.
type UpdateLecturerProfile struct {
	Department     string `json:"department"`
	Specialization string `json:"specialization"`
	Bio            string `json:"bio"`
}

// UpdateStudentProfile defines the editable student attributes.
type UpdateStudentProfile struct {
	StudentNumber string `json:"student_number"`
	Program       string `json:"program"`
	YearOfStudy   int    `json:"year_of_study" validate:"omitempty,min=1"`
}
