package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/infrastructure/session"
)

// CookieName is the browser cookie carrying the console session token.
const CookieName = "tdc_session"

// Sessions resolves and creates console sessions.
type Sessions interface {
	Resolve(ctx context.Context, token string) (*session.Entry, error)
	Create(ctx context.Context) (*session.Entry, string, time.Time, error)
}

// Session attaches the console session for the request, starting a new one
// when the cookie is missing, expired or tampered with.
func Session(sessions Sessions, secure bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if ck, err := c.Cookie(CookieName); err == nil {
				entry, err := sessions.Resolve(ctx, ck.Value)
				if err == nil {
					c.Set(KeySession, entry)
					return next(c)
				}
				log.Debug().Err(err).Msg("session cookie rejected, starting a new session")
			}

			entry, token, exp, err := sessions.Create(ctx)
			if err != nil {
				return err
			}
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				Expires:  exp,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(KeySession, entry)
			return next(c)
		}
	}
}
