package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core"
)

var (
	// errors
	ErrNotFound            = errors.New("user not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrEmailExists         = errors.New("a user with this email already exists")
	ErrStudentNumberExists = errors.New("a student with this student number already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error

		// CreateUser persists the user and its profile variant as one atomic unit.
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		QueryUsersByRole(ctx context.Context, role string) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)

		// UpdateUser persists the user and any profile variant swap as one
		// atomic unit; the dropped variant's row is deleted.
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		UpdateLecturerProfile(ctx context.Context, prof LecturerProfile) (LecturerProfile, error)
		UpdateStudentProfile(ctx context.Context, prof StudentProfile) (StudentProfile, error)

		// DeleteUsersByID cascades to the users' profiles.
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) checkEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create registers a new account. The profile variant matching the resolved
// role is created along with the User in a single transaction; a superuser
// gets no profile.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr.setRole(nu.role())
	switch {
	case usr.IsLecturer() && nu.Lecturer != nil:
		usr.Lecturer.Department = core.CleanString(nu.Lecturer.Department)
		usr.Lecturer.Specialization = core.CleanString(nu.Lecturer.Specialization)
		usr.Lecturer.Bio = core.CleanString(nu.Lecturer.Bio)
	case usr.IsStudent() && nu.Student != nil:
		usr.Student.StudentNumber = core.CleanString(nu.Student.StudentNumber)
		usr.Student.Program = core.CleanString(nu.Student.Program)
		usr.Student.YearOfStudy = nu.Student.YearOfStudy
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

// QueryLecturers returns all accounts carrying a lecturer profile.
func (svc *Service) QueryLecturers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleLecturer)
}

// QueryStudents returns all accounts carrying a student profile.
func (svc *Service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleStudent)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update modifies an account. A role change swaps the profile variant: the
// previous role's attributes are destroyed with its profile and a blank
// profile of the new role is attached.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.UpdatedAt = time.Now().UTC()
	if uu.Role != usr.Role {
		usr.setRole(uu.Role)
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

// UpdateLecturerProfile edits the lecturer attributes of the given user.
func (svc *Service) UpdateLecturerProfile(ctx context.Context, userID string, up UpdateLecturerProfile) (LecturerProfile, error) {
	usr, err := svc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return LecturerProfile{}, err
	}
	if usr.Lecturer == nil {
		return LecturerProfile{}, ErrProfileNotFound
	}

	prof := *usr.Lecturer
	if dep := core.CleanString(up.Department); dep != "" {
		prof.Department = dep
	}
	if spec := core.CleanString(up.Specialization); spec != "" {
		prof.Specialization = spec
	}
	if bio := core.CleanString(up.Bio); bio != "" {
		prof.Bio = bio
	}
	prof.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLecturerProfile(ctx, prof)
}

// UpdateStudentProfile edits the student attributes of the given user.
func (svc *Service) UpdateStudentProfile(ctx context.Context, userID string, up UpdateStudentProfile) (StudentProfile, error) {
	usr, err := svc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return StudentProfile{}, err
	}
	if usr.Student == nil {
		return StudentProfile{}, ErrProfileNotFound
	}

	prof := *usr.Student
	if num := core.CleanString(up.StudentNumber); num != "" {
		prof.StudentNumber = num
	}
	if prog := core.CleanString(up.Program); prog != "" {
		prof.Program = prog
	}
	if up.YearOfStudy > 0 {
		prof.YearOfStudy = up.YearOfStudy
	}
	prof.UpdatedAt = time.Now().UTC()
	prof, err = svc.repo.UpdateStudentProfile(ctx, prof)
	if err != nil {
		if errors.Cause(err) == ErrStudentNumberExists {
			return StudentProfile{}, core.NewValidationError(err, core.FieldError{Field: "student_number", Error: err.Error()})
		}
		return StudentProfile{}, err
	}
	return prof, nil
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		BodyText: fmt.Sprintf(
			"Hi %s,\n\nYour %s account has been created. You can now log in with your email address.\n",
			usr.Name, svc.conf.AppName,
		),
	})
}
