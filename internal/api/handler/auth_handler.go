package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/api/middleware"
	"github.com/testdeck/console/internal/api/web"
	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/infrastructure/session"
)

// SessionOps are the auth operations that also touch cookie persistence.
type SessionOps interface {
	Login(ctx context.Context, e *session.Entry, creds auth.Credentials) error
	Logout(ctx context.Context, e *session.Entry)
	CheckStatus(ctx context.Context, e *session.Entry)
}

type AuthHandler struct {
	ops    SessionOps
	settle time.Duration
}

func NewAuthHandler(ops SessionOps, settle time.Duration) *AuthHandler {
	return &AuthHandler{ops: ops, settle: settle}
}

// settled waits up to the guard settle time for an in-flight check.
func (h *AuthHandler) settled(c echo.Context, e *session.Entry) auth.State {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.settle)
	defer cancel()
	st, _ := e.Store().WaitSettled(ctx)
	return st
}

// LoginPage renders the login form, or sends an authenticated user on to the
// location they came from.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	from := auth.SafeReturnPath(c.QueryParam("from"))

	st := h.settled(c, e)
	if st.Logical() == auth.Authenticated {
		return c.Redirect(http.StatusSeeOther, from)
	}
	if st.Error != "" {
		e.Session.ResetError()
	}
	return c.Render(http.StatusOK, web.PageLogin, web.LoginView{
		Layout: web.Layout{Title: "Sign in"},
		From:   from,
	})
}

// LoginSubmit handles the login form.
func (h *AuthHandler) LoginSubmit(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	from := auth.SafeReturnPath(req.From)

	err = h.ops.Login(c.Request().Context(), e, req.credentials())
	if err == nil {
		return c.Redirect(http.StatusSeeOther, from)
	}

	view := web.LoginView{
		Layout:   web.Layout{Title: "Sign in"},
		Username: req.Username,
		From:     from,
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		view.FieldErrors = verr.Fields
		return c.Render(http.StatusUnprocessableEntity, web.PageLogin, view)
	}
	view.Error = e.Store().Snapshot().Error
	if view.Error == "" {
		view.Error = auth.FailureMessage(err)
	}
	return c.Render(http.StatusUnauthorized, web.PageLogin, view)
}

// LogoutSubmit ends the session and always lands on the login page.
func (h *AuthHandler) LogoutSubmit(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	h.ops.Logout(c.Request().Context(), e)
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Session returns the current auth state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(e.Store().Snapshot()))
}

// CheckSession re-validates the session against the backend.
//
// @Summary      Re-check session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session/check [post]
func (h *AuthHandler) CheckSession(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	h.ops.CheckStatus(c.Request().Context(), e)
	return c.JSON(http.StatusOK, toSessionResponse(e.Store().Snapshot()))
}

// Login authenticates the session with username and password.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	err = h.ops.Login(c.Request().Context(), e, req.credentials())
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case err != nil:
		msg := e.Store().Snapshot().Error
		if msg == "" {
			msg = auth.FailureMessage(err)
		}
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg})
	}
	return c.JSON(http.StatusOK, toSessionResponse(e.Store().Snapshot()))
}

// Logout ends the session.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	e, err := ctxEntry(c)
	if err != nil {
		return err
	}
	h.ops.Logout(c.Request().Context(), e)
	return c.JSON(http.StatusOK, toSessionResponse(e.Store().Snapshot()))
}
