package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/api/middleware"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/infrastructure/session"
)

// ctxEntry returns the console session attached by the Session middleware.
// Its absence means the route was registered without it.
func ctxEntry(c echo.Context) (*session.Entry, error) {
	e := middleware.EntryFrom(c)
	if e == nil {
		return nil, domain.ErrSessionInvalid
	}
	return e, nil
}

// ctxUser returns the user attached by the Guard middleware.
func ctxUser(c echo.Context) (*domain.AuthUser, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}
