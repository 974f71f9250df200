package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

type stubGateway struct {
	page      *domain.TestSuitePage
	suites    map[string]*domain.TestSuite
	listErr   error
	createErr error

	lastQuery  ports.TestSuiteQuery
	lastCreate *ports.CreateTestSuiteInput
}

func (g *stubGateway) ListTestSuites(_ context.Context, q ports.TestSuiteQuery) (*domain.TestSuitePage, error) {
	g.lastQuery = q
	if g.listErr != nil {
		return nil, g.listErr
	}
	if g.page == nil {
		return &domain.TestSuitePage{}, nil
	}
	return g.page, nil
}

func (g *stubGateway) GetTestSuite(_ context.Context, id string) (*domain.TestSuite, error) {
	s, ok := g.suites[id]
	if !ok {
		return nil, domain.ErrTestSuiteNotFound
	}
	return s, nil
}

func (g *stubGateway) CreateTestSuite(_ context.Context, in ports.CreateTestSuiteInput) (*domain.TestSuite, error) {
	g.lastCreate = &in
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &domain.TestSuite{
		ID:                 "new",
		Name:               in.Name,
		Status:             domain.SuitePreparation,
		EstimatedStartDate: in.EstimatedStartDate,
		EstimatedEndDate:   in.EstimatedEndDate,
	}, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePage() *domain.TestSuitePage {
	return &domain.TestSuitePage{
		Items: []domain.TestSuite{
			{ID: "1", Name: "Login regression", EstimatedStartDate: day(2024, 1, 1), EstimatedEndDate: day(2024, 1, 10)},
			{ID: "2", Name: "Payments", Description: "checkout LOGIN flow", EstimatedStartDate: day(2024, 2, 1), EstimatedEndDate: day(2024, 2, 10)},
			{ID: "3", Name: "Reports", EstimatedStartDate: day(2024, 3, 1), EstimatedEndDate: day(2024, 3, 10)},
		},
		PageInfo:   domain.PageInfo{HasNextPage: true},
		TotalCount: 23,
	}
}

func TestList_DefaultsAndClamp(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{}

	res, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastQuery.Page != 1 || gw.lastQuery.PageSize != DefaultPageSize || gw.lastQuery.Status != "" {
		t.Fatalf("unexpected query: %+v", gw.lastQuery)
	}
	if res.Page != 1 || res.PageSize != DefaultPageSize {
		t.Fatalf("unexpected paging in result: %+v", res)
	}

	if _, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{Page: 3, PageSize: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastQuery.Page != 3 || gw.lastQuery.PageSize != MaxPageSize {
		t.Fatalf("expected page 3 size %d, got %+v", MaxPageSize, gw.lastQuery)
	}
}

func TestList_StatusParsing(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{}

	if _, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{Status: "in_progress"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastQuery.Status != domain.SuiteInProgress {
		t.Fatalf("expected IN_PROGRESS, got %q", gw.lastQuery.Status)
	}

	_, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{Status: "ARCHIVED"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestList_SearchIsCaseInsensitiveOverNameAndDescription(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{page: samplePage()}

	res, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{Search: "  login "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "1" || res.Items[1].ID != "2" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
	if !res.Filtered {
		t.Fatalf("expected Filtered to be true")
	}
	if res.TotalCount != 23 || !res.HasNextPage {
		t.Fatalf("backend totals should pass through, got %+v", res)
	}
}

func TestList_DateWindowOverlap(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{page: samplePage()}

	res, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{
		DateFrom: day(2024, 1, 10),
		DateTo:   day(2024, 2, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "1" || res.Items[1].ID != "2" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}

	_, err = svc.List(context.Background(), gw, ports.ListTestSuitesInput{
		DateFrom: day(2024, 2, 1),
		DateTo:   day(2024, 1, 1),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted window, got %v", err)
	}
}

func TestList_GatewayErrorIsWrapped(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{listErr: domain.ErrTransport}

	_, err := svc.List(context.Background(), gw, ports.ListTestSuitesInput{})
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestGet(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{suites: map[string]*domain.TestSuite{"s1": {ID: "s1", Name: "Smoke"}}}

	s, err := svc.Get(context.Background(), gw, "s1")
	if err != nil || s.ID != "s1" {
		t.Fatalf("expected suite s1, got (%v, %v)", s, err)
	}
	if _, err := svc.Get(context.Background(), gw, "nope"); !errors.Is(err, domain.ErrTestSuiteNotFound) {
		t.Fatalf("expected ErrTestSuiteNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), gw, "  "); !errors.Is(err, domain.ErrTestSuiteNotFound) {
		t.Fatalf("expected ErrTestSuiteNotFound for blank id, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())

	tests := []struct {
		name  string
		req   ports.CreateTestSuiteRequest
		field string
	}{
		{"blank name", ports.CreateTestSuiteRequest{Name: "  ", EstimatedStartDate: "2024-01-01", EstimatedEndDate: "2024-01-02"}, "name"},
		{"missing start", ports.CreateTestSuiteRequest{Name: "x", EstimatedEndDate: "2024-01-02"}, "estimatedStartDate"},
		{"missing end", ports.CreateTestSuiteRequest{Name: "x", EstimatedStartDate: "2024-01-01"}, "estimatedEndDate"},
		{"bad start format", ports.CreateTestSuiteRequest{Name: "x", EstimatedStartDate: "01/01/2024", EstimatedEndDate: "2024-01-02"}, "estimatedStartDate"},
		{"end equals start", ports.CreateTestSuiteRequest{Name: "x", EstimatedStartDate: "2024-01-01", EstimatedEndDate: "2024-01-01"}, "estimatedEndDate"},
		{"end before start", ports.CreateTestSuiteRequest{Name: "x", EstimatedStartDate: "2024-01-05", EstimatedEndDate: "2024-01-01"}, "estimatedEndDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			_, err := svc.Create(context.Background(), gw, tt.req)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field(tt.field) == "" {
				t.Fatalf("expected message for %s, got %v", tt.field, verr.Fields)
			}
			if gw.lastCreate != nil {
				t.Fatalf("gateway should not be called on invalid input")
			}
		})
	}
}

func TestCreate_NormalizesInput(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{}

	s, err := svc.Create(context.Background(), gw, ports.CreateTestSuiteRequest{
		Name:                 "  Smoke  ",
		Description:          "   ",
		EstimatedStartDate:   "2024-03-01",
		EstimatedEndDate:     "2024-03-10",
		RequireEffortComment: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "new" {
		t.Fatalf("unexpected suite: %+v", s)
	}
	in := gw.lastCreate
	if in.Name != "Smoke" || in.Description != nil || !in.RequireEffortComment {
		t.Fatalf("unexpected input: %+v", in)
	}
	if !in.EstimatedStartDate.Equal(day(2024, 3, 1)) || in.EstimatedStartDate.Location() != time.UTC {
		t.Fatalf("expected UTC midnight start, got %v", in.EstimatedStartDate)
	}
}

func TestCreate_GatewayErrorIsWrapped(t *testing.T) {
	svc := NewTestSuiteService(zerolog.Nop())
	gw := &stubGateway{createErr: &domain.RemoteError{Op: "createTestSuite", Message: "forbidden"}}

	_, err := svc.Create(context.Background(), gw, ports.CreateTestSuiteRequest{
		Name: "x", EstimatedStartDate: "2024-01-01", EstimatedEndDate: "2024-01-02",
	})
	var remote *domain.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
}
