package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/access"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/grading"
	"github.com/neuropeak/backend/core/report"
	"github.com/neuropeak/backend/core/user"
	emailsvc "github.com/neuropeak/backend/services/email"
	inmemdb "github.com/neuropeak/backend/storage/database/inmem"
)

type env struct {
	usrSvc     *user.Service
	courseSvc  *course.Service
	gradingSvc *grading.Service
	reportSvc  *report.Service
	lecturer   user.User
	course     course.Course
	quizzes    []course.Quiz
}

func setup(t *testing.T) env {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-mem db: %v", err)
	}
	conf := &core.Config{AppName: "Academia", TestMode: true}
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	gradingSvc := grading.NewService(inmemdb.NewGradingRepository(db), courseSvc)

	ctx := context.Background()
	lecturer, err := usrSvc.Create(ctx, user.NewUser{
		Name: "Dr. Awe", Email: "awe@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		Role: user.RoleLecturer,
	})
	if err != nil {
		t.Fatalf("creating lecturer: %v", err)
	}
	crs, err := courseSvc.CreateCourse(ctx, lecturer, course.NewCourse{Code: "cs101", Name: "Intro to CS"})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}

	var quizzes []course.Quiz
	for _, title := range []string{"Week 1 Quiz", "Week 2 Quiz"} {
		quiz, err := courseSvc.CreateQuiz(ctx, lecturer, course.NewQuiz{
			CourseID:   crs.ID,
			Title:      title,
			MarkingKey: `{"1": "A"}`,
			Questions: []course.NewQuizQuestion{
				{Text: "Pick A", Type: course.QuestionTypeMCQ, OptionA: "a", OptionB: "b", CorrectAnswer: "A"},
				{Text: "Pick B", Type: course.QuestionTypeMCQ, OptionA: "a", OptionB: "b", CorrectAnswer: "B"},
			},
		})
		if err != nil {
			t.Fatalf("creating quiz %q: %v", title, err)
		}
		quizzes = append(quizzes, quiz)
	}

	return env{
		usrSvc:     usrSvc,
		courseSvc:  courseSvc,
		gradingSvc: gradingSvc,
		reportSvc:  report.NewService(courseSvc, gradingSvc, usrSvc),
		lecturer:   lecturer,
		course:     crs,
		quizzes:    quizzes,
	}
}

func (e env) newStudent(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := e.usrSvc.Create(context.Background(), user.NewUser{
		Name: name, Email: email, Password: "LePassword7!", PasswordConfirm: "LePassword7!",
	})
	if err != nil {
		t.Fatalf("creating student %s: %v", email, err)
	}
	return usr
}

func TestService_CoursePerformance(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	jane := e.newStudent(t, "Jane Mdr", "jane@test.cd")
	john := e.newStudent(t, "John Lol", "john@test.cd")

	// Jane takes both quizzes, John only the second.
	submit := func(usr user.User, quiz course.Quiz, answers map[string]string) {
		t.Helper()
		if _, err := e.gradingSvc.Submit(ctx, usr, quiz.ID, answers); err != nil {
			t.Fatalf("submitting for %s: %v", usr.Email, err)
		}
	}
	q1a, q1b := e.quizzes[0].Questions[0].ID, e.quizzes[0].Questions[1].ID
	q2a, q2b := e.quizzes[1].Questions[0].ID, e.quizzes[1].Questions[1].ID
	submit(jane, e.quizzes[0], map[string]string{q1a: "A", q1b: "B"}) // 1.0
	submit(jane, e.quizzes[1], map[string]string{q2a: "A", q2b: "C"}) // 0.5
	submit(john, e.quizzes[1], map[string]string{q2a: "D", q2b: "D"}) // 0.0

	perf, err := e.reportSvc.CoursePerformance(ctx, e.lecturer, e.course.ID)
	if err != nil {
		t.Fatalf("CoursePerformance() error = %v", err)
	}

	// students are unique and in first-seen order across quizzes
	assert.Equal(t, []string{"Jane Mdr", "John Lol"}, perf.Students)
	if assert.Len(t, perf.Performance, 3) {
		assert.Equal(t, report.PerformanceEntry{Student: "Jane Mdr", Quiz: "Week 1 Quiz", Score: 1.0}, perf.Performance[0])
		assert.Equal(t, report.PerformanceEntry{Student: "Jane Mdr", Quiz: "Week 2 Quiz", Score: 0.5}, perf.Performance[1])
		assert.Equal(t, report.PerformanceEntry{Student: "John Lol", Quiz: "Week 2 Quiz", Score: 0.0}, perf.Performance[2])
	}
}

func TestService_CoursePerformance_access(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		jane := e.newStudent(t, "Jane Mdr", "jane@test.cd")
		_, err := e.reportSvc.CoursePerformance(ctx, jane, e.course.ID)
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("non-owner lecturer", func(t *testing.T) {
		other, err := e.usrSvc.Create(ctx, user.NewUser{
			Name: "Dr. Who", Email: "who@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
			Role: user.RoleLecturer,
		})
		if err != nil {
			t.Fatalf("creating lecturer: %v", err)
		}
		_, err = e.reportSvc.CoursePerformance(ctx, other, e.course.ID)
		assert.ErrorIs(t, err, access.ErrPermissionDenied)
	})

	t.Run("superuser", func(t *testing.T) {
		root := user.User{ID: "root", Role: user.RoleSuperuser}
		perf, err := e.reportSvc.CoursePerformance(ctx, root, e.course.ID)
		if err != nil {
			t.Fatalf("CoursePerformance() error = %v", err)
		}
		assert.Empty(t, perf.Performance)
		assert.NotNil(t, perf.Performance) // empty, never null
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := e.reportSvc.CoursePerformance(ctx, e.lecturer, "nope")
		assert.ErrorIs(t, err, course.ErrNotFound)
	})
}
