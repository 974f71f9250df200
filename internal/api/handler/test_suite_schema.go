package handler

import (
	"time"

	"github.com/testdeck/console/internal/api/web"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

const dateLayout = "2006-01-02"

type listTestSuitesQuery struct {
	Status   string `query:"status"   validate:"max=32"`
	Search   string `query:"search"   validate:"max=200"`
	DateFrom string `query:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"dateTo"   validate:"omitempty,datetime=2006-01-02"`
	Page     int    `query:"page"     validate:"min=0"`
	PageSize int    `query:"pageSize" validate:"min=0"`
}

// input converts the query after validation, so dates are known to parse.
func (q listTestSuitesQuery) input() ports.ListTestSuitesInput {
	in := ports.ListTestSuitesInput{
		Status:   q.Status,
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.DateFrom != "" {
		in.DateFrom, _ = time.ParseInLocation(dateLayout, q.DateFrom, time.UTC)
	}
	if q.DateTo != "" {
		in.DateTo, _ = time.ParseInLocation(dateLayout, q.DateTo, time.UTC)
	}
	return in
}

func (q listTestSuitesQuery) filter() web.SuiteFilter {
	return web.SuiteFilter{
		Status:   q.Status,
		Search:   q.Search,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		PageSize: q.PageSize,
	}
}

type createTestSuiteRequest struct {
	Name                 string `json:"name"                 form:"name"`
	Description          string `json:"description"          form:"description"`
	EstimatedStartDate   string `json:"estimatedStartDate"   form:"estimatedStartDate" example:"2024-03-01"`
	EstimatedEndDate     string `json:"estimatedEndDate"     form:"estimatedEndDate"   example:"2024-03-10"`
	RequireEffortComment bool   `json:"requireEffortComment" form:"requireEffortComment"`
}

func (r createTestSuiteRequest) toPort() ports.CreateTestSuiteRequest {
	return ports.CreateTestSuiteRequest{
		Name:                 r.Name,
		Description:          r.Description,
		EstimatedStartDate:   r.EstimatedStartDate,
		EstimatedEndDate:     r.EstimatedEndDate,
		RequireEffortComment: r.RequireEffortComment,
	}
}

func (r createTestSuiteRequest) form() web.SuiteForm {
	return web.SuiteForm(r.toPort())
}

type testSuiteListResponse struct {
	Items           []domain.TestSuite `json:"items"`
	TotalCount      int                `json:"totalCount"`
	Page            int                `json:"page"`
	PageSize        int                `json:"pageSize"`
	HasNextPage     bool               `json:"hasNextPage"`
	HasPreviousPage bool               `json:"hasPreviousPage"`
	Filtered        bool               `json:"filtered"`
}

func toListResponse(r *ports.ListTestSuitesResult) testSuiteListResponse {
	items := r.Items
	if items == nil {
		items = []domain.TestSuite{}
	}
	return testSuiteListResponse{
		Items:           items,
		TotalCount:      r.TotalCount,
		Page:            r.Page,
		PageSize:        r.PageSize,
		HasNextPage:     r.HasNextPage,
		HasPreviousPage: r.HasPreviousPage,
		Filtered:        r.Filtered,
	}
}
