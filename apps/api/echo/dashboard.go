package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
)

type dashboardApi struct {
	svc      ClassroomService
	store    dashboard.Store
	logger   core.Logger
	validate *validator.Validate
}

func registerDashboardAPI(g *echo.Group, svc ClassroomService, store dashboard.Store, logger core.Logger, validate *validator.Validate) {
	api := dashboardApi{
		svc:      svc,
		store:    store,
		logger:   logger,
		validate: validate,
	}

	g.GET("/dashboard", api.dashboard)
	g.GET("/assignments", api.assignments)
	g.GET("/assignments/summary", api.summary)
	g.GET("/schedule", api.schedule)
}

type (
	DashboardResponse struct {
		LoadedAt time.Time         `json:"loadedAt"`
		Stats    dashboard.Stats   `json:"stats"`
		Summary  classroom.Summary `json:"summary"`
		Notice   string            `json:"notice,omitempty"`
	}

	AssignmentsQuery struct {
		View    string `query:"view" validate:"omitempty,oneof=all upcoming overdue completed"`
		Class   string `query:"class"`
		Refresh bool   `query:"refresh"`
	}

	AssignmentItem struct {
		classroom.EnrichedAssignment
		DueLabel          string  `json:"dueLabel"`
		StatusLabel       string  `json:"statusLabel"`
		AcceptsSubmission bool    `json:"acceptsSubmission"`
		LatePenalty       float64 `json:"latePenalty"`
	}

	AssignmentsResponse struct {
		View        classroom.View    `json:"view"`
		Assignments []AssignmentItem  `json:"assignments"`
		Summary     classroom.Summary `json:"summary"`
		Notice      string            `json:"notice,omitempty"`
	}

	ScheduleQuery struct {
		TZ      string `query:"tz"`
		Refresh bool   `query:"refresh"`
	}

	ScheduleResponse struct {
		Location string          `json:"location"`
		Days     []dashboard.Day `json:"days"`
		Notice   string          `json:"notice,omitempty"`
	}
)

func newAssignmentItems(items []classroom.EnrichedAssignment) []AssignmentItem {
	out := make([]AssignmentItem, 0, len(items))
	for _, e := range items {
		out = append(out, AssignmentItem{
			EnrichedAssignment: e,
			DueLabel:           e.DueLabel(),
			StatusLabel:        e.StatusLabel(),
			AcceptsSubmission:  e.AcceptsSubmission(),
			LatePenalty:        e.LatePenalty(),
		})
	}
	return out
}

// load runs a fresh load and stores it for the caller.
// Auth failures are returned so the client can sign in again; the rest become the state's notice.
func (api *dashboardApi) load(ctx echo.Context, key string) (dashboard.State, error) {
	res, err := api.svc.Load(ctx.Request().Context())
	if err != nil {
		if classroom.KindOf(err) == classroom.KindAuth {
			api.store.Delete(key)
			return dashboard.State{}, err
		}
		api.logger.Warn("listing classes", err, getContextStudent(ctx))
	}
	st := dashboard.NewState(res, err)
	api.store.Put(key, st)
	return st, nil
}

// latest returns the caller's stored state, loading it when missing or when refresh is set.
func (api *dashboardApi) latest(ctx echo.Context, refresh bool) (dashboard.State, error) {
	key := storeKey(ctx)
	if !refresh {
		if st, ok := api.store.Get(key); ok {
			return st, nil
		}
	}
	return api.load(ctx, key)
}

// Handlers

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	st, err := api.load(ctx, storeKey(ctx))
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	return ctx.JSON(http.StatusOK, DashboardResponse{
		LoadedAt: st.Result.LoadedAt(),
		Stats:    st.Stats,
		Summary:  st.Result.Summary(),
		Notice:   st.Notice,
	})
}

func (api *dashboardApi) assignments(ctx echo.Context) error {
	var query AssignmentsQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to AssignmentsQuery")
	}
	if err := api.validate.Struct(query); err != nil {
		return err
	}
	view, err := classroom.ParseView(query.View)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "view", Error: err.Error()})
	}

	st, err := api.latest(ctx, query.Refresh)
	if err != nil {
		return errors.Wrap(err, "getting latest dashboard")
	}
	res := st.Result
	if query.Class != "" {
		res = res.ForClass(query.Class)
	}
	return ctx.JSON(http.StatusOK, AssignmentsResponse{
		View:        view,
		Assignments: newAssignmentItems(res.View(view)),
		Summary:     res.Summary(),
		Notice:      st.Notice,
	})
}

func (api *dashboardApi) summary(ctx echo.Context) error {
	st, err := api.latest(ctx, false)
	if err != nil {
		return errors.Wrap(err, "getting latest dashboard")
	}
	return ctx.JSON(http.StatusOK, st.Result.Summary())
}

func (api *dashboardApi) schedule(ctx echo.Context) error {
	var query ScheduleQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ScheduleQuery")
	}
	loc := time.Local
	if query.TZ != "" {
		var err error
		if loc, err = time.LoadLocation(query.TZ); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "tz", Error: "unknown time zone"})
		}
	}

	st, err := api.latest(ctx, query.Refresh)
	if err != nil {
		return errors.Wrap(err, "getting latest dashboard")
	}
	return ctx.JSON(http.StatusOK, ScheduleResponse{
		Location: loc.String(),
		Days:     dashboard.NewSchedule(st.Result, loc),
		Notice:   st.Notice,
	})
}
