package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/grading"
)

type quizApi struct {
	deps ServerDeps
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := quizApi{deps: deps}

	qg := g.Group("/quizzes", jwt)
	qg.POST("", api.create)
	qg.GET("", api.query)
	qg.GET("/:id", api.retrieve)
	qg.PUT("/:id", api.update)
	qg.DELETE("/:id", api.destroy)

	qg.POST("/:id/questions", api.addQuestion)
	qg.GET("/:id/questions", api.queryQuestions)
	qg.DELETE("/:id/questions/:qid", api.destroyQuestion)

	qg.POST("/:id/submit", api.submit)
	qg.GET("/:id/attempts", api.queryAttempts)

	g.GET("/attempts/:id", api.retrieveAttempt, jwt)
}

// Handlers

func (api *quizApi) create(ctx echo.Context) error {
	var data course.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	quiz, err := api.deps.CourseSvc.CreateQuiz(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, quiz)
}

func (api *quizApi) query(ctx echo.Context) error {
	quizzes, err := api.deps.CourseSvc.QueryAllQuizzes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []course.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	quiz, err := api.deps.CourseSvc.GetQuiz(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz")
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *quizApi) update(ctx echo.Context) error {
	var data course.UpdateQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuiz")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	quiz, err := api.deps.CourseSvc.UpdateQuiz(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *quizApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.deps.CourseSvc.DeleteQuiz(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *quizApi) addQuestion(ctx echo.Context) error {
	var data course.NewQuizQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuizQuestion")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	q, err := api.deps.CourseSvc.AddQuestion(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *quizApi) queryQuestions(ctx echo.Context) error {
	questions, err := api.deps.CourseSvc.QueryQuestions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []course.QuizQuestion{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *quizApi) destroyQuestion(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.deps.CourseSvc.DeleteQuestion(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("qid")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Submissions

func (api *quizApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	result, err := api.deps.GradingSvc.Submit(ctx.Request().Context(), actor, ctx.Param("id"), data.Answers)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *quizApi) queryAttempts(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	quiz, err := api.deps.CourseSvc.GetQuiz(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz")
	}

	attempts, err := api.deps.GradingSvc.QueryAttempts(rctx, quiz.ID)
	if err != nil {
		return errors.Wrap(err, "querying attempts")
	}
	if attempts == nil {
		attempts = []grading.QuizAttempt{}
	}
	return ctx.JSON(http.StatusOK, attempts)
}

func (api *quizApi) retrieveAttempt(ctx echo.Context) error {
	attempt, answers, err := api.deps.GradingSvc.GetAttempt(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting attempt")
	}
	return ctx.JSON(http.StatusOK, AttemptResponse{Attempt: attempt, Answers: answers})
}

type (
	SubmitRequest struct {
		Answers map[string]string `json:"answers"`
	}

	AttemptResponse struct {
		Attempt grading.QuizAttempt  `json:"attempt"`
		Answers []grading.QuizAnswer `json:"answers"`
	}
)
