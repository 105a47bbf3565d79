package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/user"
	emailsvc "github.com/neuropeak/backend/services/email"
	inmemdb "github.com/neuropeak/backend/storage/database/inmem"
)

func setup(t *testing.T) *user.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-mem db: %v", err)
	}
	conf := &core.Config{AppName: "Academia", TestMode: true}
	return user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	t.Run("default role is student with a blank profile", func(t *testing.T) {
		usr, err := svc.Create(ctx, user.NewUser{
			Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		assert.True(t, usr.IsStudent())
		assert.NotNil(t, usr.Student)
		assert.Nil(t, usr.Lecturer)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("LePassword7!"))
	})

	t.Run("lecturer profile attributes are kept", func(t *testing.T) {
		usr, err := svc.Create(ctx, user.NewUser{
			Name: "Dr. Awe", Email: "awe@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
			Role: user.RoleLecturer,
			Lecturer: &user.NewLecturerProfile{
				Department:     "Computer Science",
				Specialization: "Databases",
			},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		assert.True(t, usr.IsLecturer())
		assert.Nil(t, usr.Student)
		if assert.NotNil(t, usr.Lecturer) {
			assert.Equal(t, "Computer Science", usr.Lecturer.Department)
			assert.Equal(t, usr.ID, usr.Lecturer.UserID)
			assert.NotEmpty(t, usr.Lecturer.ID)
		}
	})

	t.Run("superuser carries no profile", func(t *testing.T) {
		usr, err := svc.Create(ctx, user.NewUser{
			Name: "Root", Email: "root@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
			IsSuperuser: true,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		assert.True(t, usr.IsSuperuser())
		assert.Nil(t, usr.Lecturer)
		assert.Nil(t, usr.Student)
	})

	t.Run("superuser flag wins over role", func(t *testing.T) {
		usr, err := svc.Create(ctx, user.NewUser{
			Name: "Root Two", Email: "root2@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
			Role: user.RoleLecturer, IsSuperuser: true,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		assert.True(t, usr.IsSuperuser())
	})
}

func TestService_Update_roleChangeSwapsProfile(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		Student: &user.NewStudentProfile{StudentNumber: "S-001", Program: "CS", YearOfStudy: 2},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// promote to lecturer: the student attributes are destroyed with the profile
	usr, err = svc.Update(ctx, usr.ID, user.UpdateUser{Name: usr.Name, Email: usr.Email, Role: user.RoleLecturer})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	assert.True(t, usr.IsLecturer())
	assert.Nil(t, usr.Student)
	if assert.NotNil(t, usr.Lecturer) {
		assert.Empty(t, usr.Lecturer.Department) // blank profile, not a carried-over one
	}

	// demote back: a fresh student profile, the old attributes are gone
	usr, err = svc.Update(ctx, usr.ID, user.UpdateUser{Name: usr.Name, Email: usr.Email, Role: user.RoleStudent})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	assert.True(t, usr.IsStudent())
	assert.Nil(t, usr.Lecturer)
	if assert.NotNil(t, usr.Student) {
		assert.Empty(t, usr.Student.StudentNumber)
	}
}

func TestService_UpdateProfiles(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	lec, err := svc.Create(ctx, user.NewUser{
		Name: "Dr. Awe", Email: "awe@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		Role: user.RoleLecturer,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stu, err := svc.Create(ctx, user.NewUser{
		Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		Student: &user.NewStudentProfile{StudentNumber: "S-001", Program: "CS", YearOfStudy: 1},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("lecturer profile", func(t *testing.T) {
		prof, err := svc.UpdateLecturerProfile(ctx, lec.ID, user.UpdateLecturerProfile{Department: "Mathematics"})
		if err != nil {
			t.Fatalf("UpdateLecturerProfile() error = %v", err)
		}
		assert.Equal(t, "Mathematics", prof.Department)
	})

	t.Run("wrong variant", func(t *testing.T) {
		_, err := svc.UpdateLecturerProfile(ctx, stu.ID, user.UpdateLecturerProfile{Department: "Mathematics"})
		assert.ErrorIs(t, err, user.ErrProfileNotFound)
	})

	t.Run("duplicate student number", func(t *testing.T) {
		stu2, err := svc.Create(ctx, user.NewUser{
			Name: "John Lol", Email: "john@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
			Student: &user.NewStudentProfile{StudentNumber: "S-002", Program: "CS", YearOfStudy: 1},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		_, err = svc.UpdateStudentProfile(ctx, stu2.ID, user.UpdateStudentProfile{StudentNumber: "S-001"})
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestService_QueryByRole(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	for _, nu := range []user.NewUser{
		{Name: "Dr. Awe", Email: "awe@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!", Role: user.RoleLecturer},
		{Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!"},
		{Name: "John Lol", Email: "john@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!"},
	} {
		if _, err := svc.Create(ctx, nu); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	lecturers, err := svc.QueryLecturers(ctx)
	if err != nil {
		t.Fatalf("QueryLecturers() error = %v", err)
	}
	assert.Len(t, lecturers, 1)

	students, err := svc.QueryStudents(ctx)
	if err != nil {
		t.Fatalf("QueryStudents() error = %v", err)
	}
	assert.Len(t, students, 2)

	all, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	assert.Len(t, all, 3)
}

func TestService_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err = svc.Delete(ctx, usr.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = svc.GetByID(ctx, usr.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
