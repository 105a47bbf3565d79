package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/course"
)

type courseApi struct {
	deps ServerDeps
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{deps: deps}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/assignments", api.queryAssignments)
	cg.GET("/:id/quizzes", api.queryQuizzes)
	cg.GET("/:id/performance", api.performance)

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.createAssignment)
	ag.GET("", api.queryAllAssignments)
	ag.GET("/:id", api.retrieveAssignment)
	ag.PUT("/:id", api.updateAssignment)
	ag.DELETE("/:id", api.destroyAssignment)
}

// Courses

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.deps.Validate, api.deps.CourseSvc); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.deps.CourseSvc.CreateCourse(rctx, actor, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.deps.CourseSvc.QueryAllCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.deps.CourseSvc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	rctx := ctx.Request().Context()
	crs, err := api.deps.CourseSvc.GetCourse(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if err = data.Validate(rctx, api.deps.Validate, crs, api.deps.CourseSvc); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err = api.deps.CourseSvc.UpdateCourse(rctx, actor, crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.deps.CourseSvc.DeleteCourse(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) performance(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	perf, err := api.deps.ReportSvc.CoursePerformance(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing course performance")
	}
	return ctx.JSON(http.StatusOK, perf)
}

// Assignments

func (api *courseApi) createAssignment(ctx echo.Context) error {
	var data course.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asg, err := api.deps.CourseSvc.CreateAssignment(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *courseApi) queryAllAssignments(ctx echo.Context) error {
	asgs, err := api.deps.CourseSvc.QueryAllAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []course.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *courseApi) queryAssignments(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	crs, err := api.deps.CourseSvc.GetCourse(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}

	asgs, err := api.deps.CourseSvc.QueryCourseAssignments(rctx, crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	if asgs == nil {
		asgs = []course.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *courseApi) queryQuizzes(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	crs, err := api.deps.CourseSvc.GetCourse(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}

	quizzes, err := api.deps.CourseSvc.QueryCourseQuizzes(rctx, crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying course quizzes")
	}
	if quizzes == nil {
		quizzes = []course.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *courseApi) retrieveAssignment(ctx echo.Context) error {
	asg, err := api.deps.CourseSvc.GetAssignment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *courseApi) updateAssignment(ctx echo.Context) error {
	var data course.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asg, err := api.deps.CourseSvc.UpdateAssignment(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *courseApi) destroyAssignment(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.deps.CourseSvc.DeleteAssignment(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
