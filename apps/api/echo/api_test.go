package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/neuropeak/backend/apps/api/echo"
	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/chat"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/grading"
	"github.com/neuropeak/backend/core/report"
	"github.com/neuropeak/backend/core/user"
	emailsvc "github.com/neuropeak/backend/services/email"
	logsvc "github.com/neuropeak/backend/services/logger"
	textgensvc "github.com/neuropeak/backend/services/textgen"
	inmemdb "github.com/neuropeak/backend/storage/database/inmem"
)

type testEnv struct {
	conf     *core.Config
	server   *echoapi.Server
	usrSvc   *user.Service
	lecturer user.User
	student  user.User
	quiz     course.Quiz
}

func setup(t *testing.T) testEnv {
	t.Helper()

	conf := &core.Config{
		AppName:   "Academia",
		TestMode:  true,
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening in-mem db: %v", err)
	}
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	gradingSvc := grading.NewService(inmemdb.NewGradingRepository(db), courseSvc)
	reportSvc := report.NewService(courseSvc, gradingSvc, usrSvc)
	chatSvc := chat.NewService(inmemdb.NewChatRepository(db), textgensvc.NewDummyService())

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			CourseSvc:  courseSvc,
			GradingSvc: gradingSvc,
			ReportSvc:  reportSvc,
			ChatSvc:    chatSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	ctx := context.Background()
	lecturer, err := usrSvc.Create(ctx, user.NewUser{
		Name: "Dr. Awe", Email: "awe@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		Role: user.RoleLecturer,
	})
	if err != nil {
		t.Fatalf("creating lecturer: %v", err)
	}
	student, err := usrSvc.Create(ctx, user.NewUser{
		Name: "Jane Mdr", Email: "jane@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
	})
	if err != nil {
		t.Fatalf("creating student: %v", err)
	}

	crs, err := courseSvc.CreateCourse(ctx, lecturer, course.NewCourse{Code: "cs101", Name: "Intro to CS"})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	quiz, err := courseSvc.CreateQuiz(ctx, lecturer, course.NewQuiz{
		CourseID:   crs.ID,
		Title:      "Week 1 Quiz",
		MarkingKey: `{"1": "A"}`,
		Questions: []course.NewQuizQuestion{
			{Text: "Pick A", Type: course.QuestionTypeMCQ, OptionA: "a", OptionB: "b", CorrectAnswer: "A"},
			{Text: "True?", Type: course.QuestionTypeTrueFalse, CorrectAnswer: "True"},
		},
	})
	if err != nil {
		t.Fatalf("creating quiz: %v", err)
	}

	return testEnv{
		conf:     conf,
		server:   server,
		usrSvc:   usrSvc,
		lecturer: lecturer,
		student:  student,
		quiz:     quiz,
	}
}

func (e testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(e.conf, echoapi.GetUserClaims(e.conf, usr))
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func TestAPI_login(t *testing.T) {
	e := setup(t)

	t.Run("ok", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/users/login", "",
			echoapi.LoginRequest{Email: "jane@test.cd", Password: "LePassword7!"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp echoapi.LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/users/login", "",
			echoapi.LoginRequest{Email: "jane@test.cd", Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/users/login", "",
			echoapi.LoginRequest{Email: "ghost@test.cd", Password: "LePassword7!"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_authRequired(t *testing.T) {
	e := setup(t)

	rec := e.request(t, http.MethodGet, "/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_register(t *testing.T) {
	e := setup(t)

	rec := e.request(t, http.MethodPost, "/v1/users/register", "", user.NewUser{
		Name: "John Lol", Email: "john@test.cd", Password: "LePassword7!", PasswordConfirm: "LePassword7!",
		IsSuperuser: true, // silently ignored
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.False(t, usr.IsSuperuser())
	assert.True(t, usr.IsStudent())
}

func TestAPI_submit(t *testing.T) {
	e := setup(t)
	q1, q2 := e.quiz.Questions[0].ID, e.quiz.Questions[1].ID

	t.Run("student", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/quizzes/"+e.quiz.ID+"/submit", e.getToken(t, e.student),
			echoapi.SubmitRequest{Answers: map[string]string{q1: "a", q2: "False"}})
		assert.Equal(t, http.StatusOK, rec.Code)

		var result grading.AttemptResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		assert.Equal(t, 0.5, result.Score)
		if assert.Len(t, result.WrongAnswers, 1) {
			assert.Equal(t, "True?", result.WrongAnswers[0].Question)
		}
	})

	t.Run("lecturer", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/quizzes/"+e.quiz.ID+"/submit", e.getToken(t, e.lecturer),
			echoapi.SubmitRequest{Answers: map[string]string{q1: "a"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown question", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/quizzes/"+e.quiz.ID+"/submit", e.getToken(t, e.student),
			echoapi.SubmitRequest{Answers: map[string]string{"nope": "a"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		rec := e.request(t, http.MethodPost, "/v1/quizzes/nope/submit", e.getToken(t, e.student),
			echoapi.SubmitRequest{Answers: map[string]string{q1: "a"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_userQuery(t *testing.T) {
	e := setup(t)

	// superuser-only endpoint
	rec := e.request(t, http.MethodGet, "/v1/users", e.getToken(t, e.student), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	root := user.User{ID: "root", Name: "Root", Role: user.RoleSuperuser}
	rec = e.request(t, http.MethodGet, "/v1/users", e.getToken(t, root), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Len(t, users, 2)
}

func TestAPI_coursePerformance(t *testing.T) {
	e := setup(t)
	q1 := e.quiz.Questions[0].ID

	rec := e.request(t, http.MethodPost, "/v1/quizzes/"+e.quiz.ID+"/submit", e.getToken(t, e.student),
		echoapi.SubmitRequest{Answers: map[string]string{q1: "A"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("owner", func(t *testing.T) {
		rec := e.request(t, http.MethodGet, "/v1/courses/"+e.quiz.CourseID+"/performance", e.getToken(t, e.lecturer), nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var perf report.CoursePerformance
		if err := json.Unmarshal(rec.Body.Bytes(), &perf); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		assert.Equal(t, []string{"Jane Mdr"}, perf.Students)
		if assert.Len(t, perf.Performance, 1) {
			assert.Equal(t, 1.0, perf.Performance[0].Score)
		}
	})

	t.Run("student", func(t *testing.T) {
		rec := e.request(t, http.MethodGet, "/v1/courses/"+e.quiz.CourseID+"/performance", e.getToken(t, e.student), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAPI_chat(t *testing.T) {
	e := setup(t)
	token := e.getToken(t, e.student)

	rec := e.request(t, http.MethodPost, "/v1/chat", token, echoapi.ChatRequest{Message: "hello"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var msg chat.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Equal(t, "You said: hello", msg.BotReply)

	rec = e.request(t, http.MethodGet, "/v1/chat", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var history []chat.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Len(t, history, 1)
}
