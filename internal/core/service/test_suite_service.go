package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	dateLayout = "2006-01-02"
)

var _ ports.TestSuiteService = (*TestSuiteService)(nil)

// TestSuiteService applies list defaults, client-side refinement and create
// validation on top of a per-session gateway.
type TestSuiteService struct {
	logger zerolog.Logger
}

func NewTestSuiteService(logger zerolog.Logger) *TestSuiteService {
	return &TestSuiteService{logger: logger}
}

// List fetches one page from the backend filtered by status, then narrows it
// by search text and by the estimated date window. Totals and paging flags are
// the backend's; Filtered reports whether the refinement dropped anything.
func (s *TestSuiteService) List(ctx context.Context, gw ports.TestSuiteGateway, in ports.ListTestSuitesInput) (*ports.ListTestSuitesResult, error) {
	status, ok := domain.ParseSuiteStatus(in.Status)
	if !ok {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("unknown status %q", in.Status),
		}}
	}
	if !in.DateFrom.IsZero() && !in.DateTo.IsZero() && in.DateTo.Before(in.DateFrom) {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"dateTo": "dateTo must not be before dateFrom",
		}}
	}

	page, pageSize := normalizePaging(in.Page, in.PageSize)
	res, err := gw.ListTestSuites(ctx, ports.TestSuiteQuery{Status: status, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("list test suites: %w", err)
	}

	items := refine(res.Items, strings.TrimSpace(in.Search), in.DateFrom, in.DateTo)
	return &ports.ListTestSuitesResult{
		Items:           items,
		TotalCount:      res.TotalCount,
		Page:            page,
		PageSize:        pageSize,
		HasNextPage:     res.PageInfo.HasNextPage,
		HasPreviousPage: res.PageInfo.HasPreviousPage,
		Filtered:        len(items) != len(res.Items),
	}, nil
}

func (s *TestSuiteService) Get(ctx context.Context, gw ports.TestSuiteGateway, id string) (*domain.TestSuite, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrTestSuiteNotFound
	}
	suite, err := gw.GetTestSuite(ctx, id)
	if err != nil {
		return nil, err
	}
	return suite, nil
}

// Create validates the form input and sends dates as UTC midnight.
func (s *TestSuiteService) Create(ctx context.Context, gw ports.TestSuiteGateway, req ports.CreateTestSuiteRequest) (*domain.TestSuite, error) {
	in, verr := validateCreate(req)
	if verr != nil {
		return nil, verr
	}

	suite, err := gw.CreateTestSuite(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create test suite: %w", err)
	}
	s.logger.Info().Str("suite_id", suite.ID).Str("name", suite.Name).Msg("test suite created")
	return suite, nil
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// refine keeps suites whose name or description contains search and whose
// estimated window overlaps [from, to]. Zero bounds are open.
func refine(items []domain.TestSuite, search string, from, to time.Time) []domain.TestSuite {
	needle := strings.ToLower(search)
	out := make([]domain.TestSuite, 0, len(items))
	for _, it := range items {
		if needle != "" &&
			!strings.Contains(strings.ToLower(it.Name), needle) &&
			!strings.Contains(strings.ToLower(it.Description), needle) {
			continue
		}
		if !from.IsZero() && it.EstimatedEndDate.Before(from) {
			continue
		}
		if !to.IsZero() && it.EstimatedStartDate.After(endOfDay(to)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func endOfDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
}

func validateCreate(req ports.CreateTestSuiteRequest) (ports.CreateTestSuiteInput, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		fields["name"] = "name is required"
	}

	start, startErr := parseDate(req.EstimatedStartDate)
	switch {
	case strings.TrimSpace(req.EstimatedStartDate) == "":
		fields["estimatedStartDate"] = "start date is required"
	case startErr != nil:
		fields["estimatedStartDate"] = "start date must be YYYY-MM-DD"
	}
	end, endErr := parseDate(req.EstimatedEndDate)
	switch {
	case strings.TrimSpace(req.EstimatedEndDate) == "":
		fields["estimatedEndDate"] = "end date is required"
	case endErr != nil:
		fields["estimatedEndDate"] = "end date must be YYYY-MM-DD"
	case startErr == nil && !end.After(start):
		fields["estimatedEndDate"] = "end date must be after start date"
	}

	if len(fields) > 0 {
		return ports.CreateTestSuiteInput{}, &domain.ValidationError{Fields: fields}
	}

	in := ports.CreateTestSuiteInput{
		Name:                 name,
		EstimatedStartDate:   start,
		EstimatedEndDate:     end,
		RequireEffortComment: req.RequireEffortComment,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		in.Description = &d
	}
	return in, nil
}

// parseDate reads a YYYY-MM-DD form value as midnight UTC.
func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(v), time.UTC)
}
