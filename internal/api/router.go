package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/testdeck/console/internal/api/docs"
	"github.com/testdeck/console/internal/api/handler"
	"github.com/testdeck/console/internal/api/middleware"
	"github.com/testdeck/console/internal/api/web"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

// Sessions is what the router needs from the session manager.
type Sessions interface {
	middleware.Sessions
	handler.SessionOps
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log           zerolog.Logger
	Sessions      Sessions
	Suites        ports.TestSuiteService
	Readiness     map[string]handler.Check
	CookieSecure  bool
	SettleTimeout time.Duration
	// LoginPerMinute and LoginBurst throttle login submissions per client IP.
	// Zero disables the throttle.
	LoginPerMinute int
	LoginBurst     int
	// Registry receives the HTTP request metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "console"}
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		gatherer = d.Registry
	}
	promMW, err := promCfg.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("request metrics: %w", err)
	}
	e.Use(promMW)

	// --- Health probes and tooling (no session) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.SettleTimeout)
	suiteHandler := handler.NewTestSuiteHandler(d.Suites)

	pageGuard := middleware.Guard(d.SettleTimeout, middleware.GuardPage)
	apiGuard := middleware.Guard(d.SettleTimeout, middleware.GuardAPI)
	canCreate := middleware.Require(domain.PermCreateTestSuite)
	throttle := middleware.LoginThrottle(d.LoginPerMinute, d.LoginBurst)

	// Session is attached per route, never to a group: echo backs group
	// middleware with catch-all not-found routes, and unrouted paths must not
	// mount sessions.
	sess := middleware.Session(d.Sessions, d.CookieSecure, d.Log)

	// --- Pages ---
	e.GET(middleware.LoginPath, authHandler.LoginPage, sess)
	e.POST(middleware.LoginPath, authHandler.LoginSubmit, throttle, sess)
	e.POST("/logout", authHandler.LogoutSubmit, sess)
	e.GET("/", suiteHandler.Home, sess, pageGuard)
	e.GET("/test-suites", suiteHandler.ListPage, sess, pageGuard)
	e.POST("/test-suites", suiteHandler.CreateSubmit, sess, pageGuard, canCreate)
	e.GET("/test-suites/:id", suiteHandler.DetailPage, sess, pageGuard)

	// --- JSON API ---
	api := e.Group("/api")
	api.GET("/session", authHandler.Session, sess)
	api.POST("/session/check", authHandler.CheckSession, sess)
	api.POST("/login", authHandler.Login, throttle, sess)
	api.POST("/logout", authHandler.Logout, sess)
	api.GET("/test-suites", suiteHandler.List, sess, apiGuard)
	api.GET("/test-suites/:id", suiteHandler.Get, sess, apiGuard)
	api.POST("/test-suites", suiteHandler.Create, sess, apiGuard, canCreate)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
