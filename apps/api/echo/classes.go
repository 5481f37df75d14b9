package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
)

type classApi struct {
	svc      ClassroomService
	store    dashboard.Store
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, svc ClassroomService, store dashboard.Store, validate *validator.Validate) {
	api := classApi{
		svc:      svc,
		store:    store,
		validate: validate,
	}

	cg := g.Group("/classes")
	cg.GET("", api.list)
	cg.GET("/:classId/assignments", api.assignments)

	ag := cg.Group("/:classId/assignments/:assignmentId")
	ag.GET("/submission", api.submission)
	ag.POST("/submit", api.submit)
}

type (
	ClassesResponse struct {
		Classes []classroom.EnrolledClass `json:"classes"`
	}

	ClassAssignmentsResponse struct {
		Class       classroom.EnrolledClass `json:"class"`
		Assignments []AssignmentItem        `json:"assignments"`
	}

	SubmissionResponse struct {
		Submission classroom.Submission `json:"submission"`
	}

	SubmitRequest struct {
		Code string `json:"code" validate:"notblank"`
	}
)

// Handlers

func (api *classApi) list(ctx echo.Context) error {
	classes, err := api.svc.ListClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, ClassesResponse{Classes: classes})
}

func (api *classApi) assignments(ctx echo.Context) error {
	classID := ctx.Param("classId")
	classes, err := api.svc.ListClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}

	for _, class := range classes {
		if class.ID == classID {
			items := api.svc.ClassAssignments(ctx.Request().Context(), class)
			return ctx.JSON(http.StatusOK, ClassAssignmentsResponse{
				Class:       class,
				Assignments: newAssignmentItems(items),
			})
		}
	}
	return errClassNotEnrolled
}

func (api *classApi) submission(ctx echo.Context) error {
	sub, err := api.svc.Submission(ctx.Request().Context(), ctx.Param("classId"), ctx.Param("assignmentId"))
	if err != nil {
		return errors.Wrap(err, "getting submission")
	}
	if sub == nil {
		return errNoSubmission
	}
	return ctx.JSON(http.StatusOK, SubmissionResponse{Submission: *sub})
}

func (api *classApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("classId"), ctx.Param("assignmentId"), data.Code)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	api.store.Delete(storeKey(ctx)) // statuses changed
	return ctx.JSON(http.StatusCreated, SubmissionResponse{Submission: sub})
}
