package ports

import (
	"context"
	"time"

	"github.com/testdeck/console/internal/core/domain"
)

// TestSuiteQuery carries the server-side list parameters.
type TestSuiteQuery struct {
	Status   domain.SuiteStatus // empty = all
	Page     int                // 1-based
	PageSize int
}

// CreateTestSuiteInput is sent to the backend to create a suite.
type CreateTestSuiteInput struct {
	Name                 string
	Description          *string
	EstimatedStartDate   time.Time
	EstimatedEndDate     time.Time
	RequireEffortComment bool
}

// TestSuiteGateway reads and writes test suites on the backend.
type TestSuiteGateway interface {
	ListTestSuites(ctx context.Context, q TestSuiteQuery) (*domain.TestSuitePage, error)
	GetTestSuite(ctx context.Context, id string) (*domain.TestSuite, error)
	CreateTestSuite(ctx context.Context, in CreateTestSuiteInput) (*domain.TestSuite, error)
}

// ListTestSuitesInput is the full filter accepted by the list use case.
type ListTestSuitesInput struct {
	Status   string
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	PageSize int
}

// ListTestSuitesResult is returned by the list use case.
type ListTestSuitesResult struct {
	Items           []domain.TestSuite
	TotalCount      int
	Page            int
	PageSize        int
	HasNextPage     bool
	HasPreviousPage bool
	// Filtered is true when search or date refinement dropped items from the page.
	Filtered bool
}

// CreateTestSuiteRequest is the raw form input for creating a suite.
type CreateTestSuiteRequest struct {
	Name                 string
	Description          string
	EstimatedStartDate   string // YYYY-MM-DD
	EstimatedEndDate     string // YYYY-MM-DD
	RequireEffortComment bool
}

// TestSuiteService is the use-case layer over a TestSuiteGateway.
type TestSuiteService interface {
	List(ctx context.Context, gw TestSuiteGateway, in ListTestSuitesInput) (*ListTestSuitesResult, error)
	Get(ctx context.Context, gw TestSuiteGateway, id string) (*domain.TestSuite, error)
	Create(ctx context.Context, gw TestSuiteGateway, req CreateTestSuiteRequest) (*domain.TestSuite, error)
}
