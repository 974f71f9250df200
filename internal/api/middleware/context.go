package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/infrastructure/session"
)

// Context keys set by Session and Guard.
const (
	KeySession = "session"
	KeyUser    = "user"
	KeyRole    = "role"
)

// EntryFrom returns the console session attached by Session, or nil.
func EntryFrom(c echo.Context) *session.Entry {
	e, _ := c.Get(KeySession).(*session.Entry)
	return e
}

// UserFrom returns the user attached by Guard, or nil.
func UserFrom(c echo.Context) *domain.AuthUser {
	u, _ := c.Get(KeyUser).(*domain.AuthUser)
	return u
}
