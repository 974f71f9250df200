package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/testdeck/console/internal/api"
	"github.com/testdeck/console/internal/api/handler"
	"github.com/testdeck/console/internal/api/metrics"
	"github.com/testdeck/console/internal/core/ports"
	"github.com/testdeck/console/internal/core/service"
	"github.com/testdeck/console/internal/infrastructure/audit"
	"github.com/testdeck/console/internal/infrastructure/config"
	mongodb "github.com/testdeck/console/internal/infrastructure/db/mongo"
	redisdb "github.com/testdeck/console/internal/infrastructure/db/redis"
	"github.com/testdeck/console/internal/infrastructure/graphql"
	"github.com/testdeck/console/internal/infrastructure/queue"
	"github.com/testdeck/console/internal/infrastructure/session"
	"github.com/testdeck/console/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "start the console HTTP server",
		Action: func(c *cli.Context) error {
			return serve(c.Context)
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.Load(parent)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "testdeck-console",
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := graphql.NewBackend(graphql.Config{
		Endpoint: cfg.Backend.GraphQLURL,
		Timeout:  cfg.Backend.Timeout,
	}, logger.Component("graphql"))
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}

	readiness := map[string]handler.Check{"backend": backend.Ping}

	// --- Cookie persistence ---
	var cookies ports.CookieStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cookies = redisdb.NewCookieStore(rdb)
		readiness["redis"] = redisdb.Probe(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, backend cookies are kept in memory")
		cookies = session.NewMemoryCookieStore()
	}

	// --- Audit trail ---
	var sink ports.AuditSink = audit.LogSink{Log: logger.Component("audit")}
	if cfg.Mongo.URI != "" {
		mclient, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := mclient.Disconnect(dctx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()
		repo := mongodb.NewAuditRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not create audit indexes")
		}
		sink = repo
		readiness["mongo"] = mongodb.Probe(mclient)
	}

	// --- Sessions ---
	dispatcher := queue.NewDispatcher(cfg.Session.BootstrapWorkers, logger.Component("queue"))
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	manager, err := session.NewManager(
		session.Config{Secret: []byte(cfg.Session.Secret), TTL: cfg.Session.TTL},
		func(c []*http.Cookie) (session.Backend, error) { return backend.NewClient(c) },
		cookies,
		dispatcher,
		session.WithAuditSink(metrics.AuditSink{Next: sink}),
		session.WithStoreObserver(metrics.ObserveTransition),
		session.WithLogger(logger.Component("session")),
	)
	if err != nil {
		return err
	}
	go manager.RunJanitor(ctx, janitorInterval)

	metrics.RegisterRuntimeGauges(
		func() float64 { return float64(manager.Len()) },
		func() float64 { return float64(dispatcher.Depth()) },
	)

	// --- HTTP ---
	router, err := api.NewRouter(api.Deps{
		Log:            logger.Component("http"),
		Sessions:       manager,
		Suites:         service.NewTestSuiteService(logger.Component("test_suites")),
		Readiness:      readiness,
		CookieSecure:   cfg.Session.CookieSecure,
		SettleTimeout:  cfg.Session.SettleTimeout,
		LoginPerMinute: cfg.Session.LoginPerMinute,
		LoginBurst:     cfg.Session.LoginBurst,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return run(ctx, srv, log)
}

// run serves until ctx ends or the listener fails, then drains in-flight
// requests.
func run(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("console stopped")
	return serveErr
}
