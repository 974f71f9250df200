package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/testdeck/console/internal/api/metrics"
	"github.com/testdeck/console/internal/api/web"
	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/core/domain"
)

// GuardMode selects how non-protected outcomes are rendered.
type GuardMode int

const (
	// GuardPage renders the checking page or redirects to the login page.
	GuardPage GuardMode = iota
	// GuardAPI answers 503 while checking and 401 when logged out.
	GuardAPI
)

const (
	LoginPath  = "/login"
	retryAfter = 1
)

// Guard applies the route guard to the request. While the session check is
// still running it waits up to settle for it to finish before deciding.
func Guard(settle time.Duration, mode GuardMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			entry := EntryFrom(c)
			if entry == nil {
				return domain.ErrSessionInvalid
			}

			st := entry.Store().Snapshot()
			if st.IsLoading && settle > 0 {
				start := time.Now()
				ctx, cancel := context.WithTimeout(c.Request().Context(), settle)
				st, _ = entry.Store().WaitSettled(ctx)
				cancel()
				metrics.GuardSettleWait.Observe(time.Since(start).Seconds())
			}

			d := auth.Decide(st, c.Request().URL.RequestURI())
			metrics.ObserveDecision(d)

			switch d.Kind {
			case auth.RenderPlaceholder:
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				if mode == GuardAPI {
					return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session check in progress"})
				}
				return c.Render(http.StatusOK, web.PageChecking, web.CheckingView{
					Layout:     web.Layout{Title: "Checking session"},
					RetryAfter: retryAfter,
				})
			case auth.RedirectToLogin:
				if mode == GuardAPI {
					return domain.ErrUnauthenticated
				}
				return c.Redirect(http.StatusSeeOther, auth.LoginURL(LoginPath, d.From))
			}

			if st.User == nil {
				return domain.ErrUnauthenticated
			}
			c.Set(KeyUser, st.User)
			c.Set(KeyRole, st.User.Role)
			return next(c)
		}
	}
}
