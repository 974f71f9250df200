package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/core/domain"
)

// Require rejects users whose role, as set by Guard, does not hold perm.
// It must run after Guard.
func Require(perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !domain.Can(role, perm) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
