package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func runReadiness(t *testing.T, checks map[string]Check) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := NewReadinessHandler(checks).Readiness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	rec := runReadiness(t, map[string]Check{"backend": ok, "redis": ok})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) || !strings.Contains(rec.Body.String(), `"redis"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestReadiness_OneFailingDependency(t *testing.T) {
	rec := runReadiness(t, map[string]Check{
		"backend": func(context.Context) error { return nil },
		"mongo":   func(context.Context) error { return errors.New("mongo ping: no reachable servers") },
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"degraded"`) || !strings.Contains(body, "no reachable servers") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"uptime"`) {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}
