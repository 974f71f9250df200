package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/api/metrics"
	"github.com/testdeck/console/internal/api/web"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

type TestSuiteHandler struct {
	svc ports.TestSuiteService
}

func NewTestSuiteHandler(svc ports.TestSuiteService) *TestSuiteHandler {
	return &TestSuiteHandler{svc: svc}
}

// Home renders the dashboard with suite counts per status.
func (h *TestSuiteHandler) Home(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	view := web.HomeView{Layout: web.Layout{Title: "Dashboard", User: user}}
	for _, st := range domain.SuiteStatuses {
		res, err := h.svc.List(c.Request().Context(), e.Backend, ports.ListTestSuitesInput{Status: string(st), PageSize: 1})
		if err != nil {
			return err
		}
		view.Counts = append(view.Counts, web.StatusCount{Status: st, Count: res.TotalCount})
		view.Total += res.TotalCount
	}
	return c.Render(http.StatusOK, web.PageHome, view)
}

// ListPage renders the filtered suite list.
func (h *TestSuiteHandler) ListPage(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var q listTestSuitesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	view := web.SuitesView{
		Layout:   web.Layout{Title: "Test suites", User: user},
		Filter:   q.filter(),
		Statuses: domain.SuiteStatuses,
	}
	if err := c.Validate(&q); err != nil {
		return h.renderListError(c, view, err)
	}

	res, err := h.svc.List(c.Request().Context(), e.Backend, q.input())
	if err != nil {
		return h.renderListError(c, view, err)
	}
	view.Result = res
	return c.Render(http.StatusOK, web.PageSuites, view)
}

func (h *TestSuiteHandler) renderListError(c echo.Context, view web.SuitesView, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	view.Error = verr.Error()
	return c.Render(http.StatusUnprocessableEntity, web.PageSuites, view)
}

// DetailPage renders one suite with its groups.
func (h *TestSuiteHandler) DetailPage(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	suite, err := h.svc.Get(c.Request().Context(), e.Backend, c.Param("id"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, web.PageSuite, web.SuiteView{
		Layout: web.Layout{Title: suite.Name, User: user},
		Suite:  suite,
	})
}

// CreateSubmit handles the new-suite form.
func (h *TestSuiteHandler) CreateSubmit(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createTestSuiteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	suite, err := h.svc.Create(c.Request().Context(), e.Backend, req.toPort())
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Render(http.StatusUnprocessableEntity, web.PageSuites, web.SuitesView{
			Layout:      web.Layout{Title: "Test suites", User: user},
			Statuses:    domain.SuiteStatuses,
			Form:        req.form(),
			FieldErrors: verr.Fields,
		})
	}
	if err != nil {
		return err
	}
	metrics.TestSuitesCreatedTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/test-suites/"+suite.ID)
}

// List returns one page of test suites.
//
// @Summary      List test suites
// @Tags         test-suites
// @Produce      json
// @Param        status    query     string  false  "PREPARATION, IN_PROGRESS, COMPLETED or SUSPENDED"
// @Param        search    query     string  false  "Case-insensitive text over name and description"
// @Param        dateFrom  query     string  false  "YYYY-MM-DD"
// @Param        dateTo    query     string  false  "YYYY-MM-DD"
// @Param        page      query     int     false  "1-based page"  default(1)
// @Param        pageSize  query     int     false  "Page size, at most 100"  default(10)
// @Success      200       {object}  testSuiteListResponse
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /api/test-suites [get]
func (h *TestSuiteHandler) List(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	var q listTestSuitesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	res, err := h.svc.List(c.Request().Context(), e.Backend, q.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(res))
}

// Get returns one suite with its groups.
//
// @Summary      Get a test suite
// @Tags         test-suites
// @Produce      json
// @Param        id   path      string  true  "Suite ID"
// @Success      200  {object}  domain.TestSuite
// @Failure      404  {object}  errorResponse
// @Router       /api/test-suites/{id} [get]
func (h *TestSuiteHandler) Get(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	suite, err := h.svc.Get(c.Request().Context(), e.Backend, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, suite)
}

// Create creates a test suite. Admins and managers only.
//
// @Summary      Create a test suite
// @Tags         test-suites
// @Accept       json
// @Produce      json
// @Param        body  body      createTestSuiteRequest  true  "Suite details"
// @Success      201   {object}  domain.TestSuite
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/test-suites [post]
func (h *TestSuiteHandler) Create(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	var req createTestSuiteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	suite, err := h.svc.Create(c.Request().Context(), e.Backend, req.toPort())
	if err != nil {
		return err
	}
	metrics.TestSuitesCreatedTotal.Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/api/test-suites/"+suite.ID)
	return c.JSON(http.StatusCreated, suite)
}
