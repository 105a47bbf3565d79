package course_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/access"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/user"
	emailsvc "github.com/neuropeak/backend/services/email"
	inmemdb "github.com/neuropeak/backend/storage/database/inmem"
)

var validate = validator.New()

func init() {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
}

type env struct {
	courseSvc *course.Service
	lecturer  user.User
	other     user.User
	student   user.User
}

func setup(t *testing.T) env {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-mem db: %v", err)
	}
	conf := &core.Config{AppName: "Academia", TestMode: true}
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)

	ctx := context.Background()
	newUsr := func(name, email, role string) user.User {
		usr, err := usrSvc.Create(ctx, user.NewUser{
			Name: name, Email: email, Password: "LePassword7!", PasswordConfirm: "LePassword7!", Role: role,
		})
		if err != nil {
			t.Fatalf("creating %s: %v", email, err)
		}
		return usr
	}

	return env{
		courseSvc: course.NewService(inmemdb.NewCourseRepository(db)),
		lecturer:  newUsr("Dr. Awe", "awe@test.cd", user.RoleLecturer),
		other:     newUsr("Dr. Who", "who@test.cd", user.RoleLecturer),
		student:   newUsr("Jane Mdr", "jane@test.cd", user.RoleStudent),
	}
}

func (e env) newCourse(t *testing.T, code string) course.Course {
	t.Helper()
	crs, err := e.courseSvc.CreateCourse(context.Background(), e.lecturer, course.NewCourse{
		Code: code, Name: "Intro to " + code,
	})
	if err != nil {
		t.Fatalf("creating course %s: %v", code, err)
	}
	return crs
}

func TestService_CreateCourse(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	t.Run("lecturer owns what they create", func(t *testing.T) {
		crs, err := e.courseSvc.CreateCourse(ctx, e.lecturer, course.NewCourse{Code: "cs101", Name: "Intro to CS"})
		if err != nil {
			t.Fatalf("CreateCourse() error = %v", err)
		}
		assert.Equal(t, e.lecturer.ID, crs.LecturerID)
		assert.NotEmpty(t, crs.ID)
	})

	t.Run("student cannot create", func(t *testing.T) {
		_, err := e.courseSvc.CreateCourse(ctx, e.student, course.NewCourse{Code: "cs102", Name: "More CS"})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("duplicate code", func(t *testing.T) {
		nc := course.NewCourse{Code: "cs101", Name: "Intro to CS, again"}
		err := nc.Validate(ctx, validate, e.courseSvc)
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestService_UpdateCourse(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	crs := e.newCourse(t, "cs101")

	t.Run("owner", func(t *testing.T) {
		updated, err := e.courseSvc.UpdateCourse(ctx, e.lecturer, crs.ID, course.UpdateCourse{
			Code: crs.Code, Name: "Intro to CS v2",
		})
		if err != nil {
			t.Fatalf("UpdateCourse() error = %v", err)
		}
		assert.Equal(t, "Intro to CS v2", updated.Name)
	})

	t.Run("non-owner lecturer", func(t *testing.T) {
		_, err := e.courseSvc.UpdateCourse(ctx, e.other, crs.ID, course.UpdateCourse{Code: crs.Code, Name: "Hijacked"})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := e.courseSvc.UpdateCourse(ctx, e.lecturer, "nope", course.UpdateCourse{Code: "x", Name: "x"})
		assert.ErrorIs(t, err, course.ErrNotFound)
	})
}

func TestService_DeleteCourse(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	crs := e.newCourse(t, "cs101")

	if err := e.courseSvc.DeleteCourse(ctx, e.other, crs.ID); !assert.ErrorIs(t, err, access.ErrPermissionDenied) {
		return
	}
	if err := e.courseSvc.DeleteCourse(ctx, e.lecturer, crs.ID); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	_, err := e.courseSvc.GetCourse(ctx, crs.ID)
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestService_Assignments(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	crs := e.newCourse(t, "cs101")

	t.Run("create requires course ownership", func(t *testing.T) {
		_, err := e.courseSvc.CreateAssignment(ctx, e.other, course.NewAssignment{
			CourseID: crs.ID, Title: "Homework 1",
		})
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	asg, err := e.courseSvc.CreateAssignment(ctx, e.lecturer, course.NewAssignment{
		CourseID: crs.ID, Title: "Homework 1", MarkingKey: `{"1": "42"}`,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	assert.Equal(t, crs.ID, asg.CourseID)

	t.Run("listed under the course", func(t *testing.T) {
		asgs, err := e.courseSvc.QueryCourseAssignments(ctx, crs.ID)
		if err != nil {
			t.Fatalf("QueryCourseAssignments() error = %v", err)
		}
		if assert.Len(t, asgs, 1) {
			assert.Equal(t, asg.ID, asgs[0].ID)
		}
	})

	t.Run("update by owner", func(t *testing.T) {
		updated, err := e.courseSvc.UpdateAssignment(ctx, e.lecturer, asg.ID, course.UpdateAssignment{Title: "Homework 1 (revised)"})
		if err != nil {
			t.Fatalf("UpdateAssignment() error = %v", err)
		}
		assert.Equal(t, "Homework 1 (revised)", updated.Title)
	})

	t.Run("delete by non-owner", func(t *testing.T) {
		err := e.courseSvc.DeleteAssignment(ctx, e.other, asg.ID)
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})
}

func TestService_Quizzes(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	crs := e.newCourse(t, "cs101")

	nq := course.NewQuiz{
		CourseID:   crs.ID,
		Title:      "Week 1 Quiz",
		MarkingKey: `{"1": "A"}`,
		Questions: []course.NewQuizQuestion{
			{Text: "Pick A", Type: course.QuestionTypeMCQ, OptionA: "a", OptionB: "b", CorrectAnswer: "A"},
			{Text: "True?", Type: course.QuestionTypeTrueFalse, CorrectAnswer: "True"},
		},
	}

	t.Run("non-owner cannot create", func(t *testing.T) {
		_, err := e.courseSvc.CreateQuiz(ctx, e.other, nq)
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	quiz, err := e.courseSvc.CreateQuiz(ctx, e.lecturer, nq)
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}
	if assert.Len(t, quiz.Questions, 2) {
		assert.Equal(t, 0, quiz.Questions[0].Position)
		assert.Equal(t, 1, quiz.Questions[1].Position)
	}

	t.Run("add question appends", func(t *testing.T) {
		q, err := e.courseSvc.AddQuestion(ctx, e.lecturer, quiz.ID, course.NewQuizQuestion{
			Text: "Pick B", Type: course.QuestionTypeMCQ, OptionA: "a", OptionB: "b", CorrectAnswer: "B",
		})
		if err != nil {
			t.Fatalf("AddQuestion() error = %v", err)
		}
		assert.Equal(t, 2, q.Position)

		questions, err := e.courseSvc.QueryQuestions(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("QueryQuestions() error = %v", err)
		}
		assert.Len(t, questions, 3)
	})

	t.Run("delete question", func(t *testing.T) {
		err := e.courseSvc.DeleteQuestion(ctx, e.lecturer, quiz.ID, quiz.Questions[0].ID)
		if err != nil {
			t.Fatalf("DeleteQuestion() error = %v", err)
		}
		err = e.courseSvc.DeleteQuestion(ctx, e.lecturer, quiz.ID, "nope")
		assert.ErrorIs(t, err, course.ErrQuestionNotFound)
	})

	t.Run("superuser can touch any quiz", func(t *testing.T) {
		root := user.User{ID: "root", Role: user.RoleSuperuser}
		_, err := e.courseSvc.UpdateQuiz(ctx, root, quiz.ID, course.UpdateQuiz{Title: "Week 1 Quiz (final)"})
		assert.NoError(t, err)
	})
}
