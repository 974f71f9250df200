package graphql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

var _ ports.TestSuiteGateway = (*Client)(nil)

type testGroupPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"displayOrder"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type testSuitePayload struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Description          *string            `json:"description"`
	Status               string             `json:"status"`
	EstimatedStartDate   time.Time          `json:"estimatedStartDate"`
	EstimatedEndDate     time.Time          `json:"estimatedEndDate"`
	RequireEffortComment bool               `json:"requireEffortComment"`
	Progress             float64            `json:"progress"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
	Groups               []testGroupPayload `json:"groups"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (p *testSuitePayload) toDomain() *domain.TestSuite {
	if p == nil {
		return nil
	}
	s := &domain.TestSuite{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          deref(p.Description),
		Status:               domain.SuiteStatus(p.Status),
		EstimatedStartDate:   p.EstimatedStartDate,
		EstimatedEndDate:     p.EstimatedEndDate,
		RequireEffortComment: p.RequireEffortComment,
		Progress:             p.Progress,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	for _, g := range p.Groups {
		s.Groups = append(s.Groups, domain.TestGroup{
			ID:           g.ID,
			Name:         g.Name,
			Description:  deref(g.Description),
			DisplayOrder: g.DisplayOrder,
			Status:       domain.SuiteStatus(g.Status),
			CreatedAt:    g.CreatedAt,
			UpdatedAt:    g.UpdatedAt,
		})
	}
	return s
}

// ListTestSuites fetches one page. An empty status is sent as null.
func (c *Client) ListTestSuites(ctx context.Context, q ports.TestSuiteQuery) (*domain.TestSuitePage, error) {
	req := newRequest(testSuiteListQuery)
	if q.Status != "" {
		req.Var("status", string(q.Status))
	} else {
		req.Var("status", nil)
	}
	req.Var("page", q.Page)
	req.Var("pageSize", q.PageSize)

	var resp struct {
		TestSuites struct {
			Edges []struct {
				Node   testSuitePayload `json:"node"`
				Cursor string           `json:"cursor"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage     bool    `json:"hasNextPage"`
				HasPreviousPage bool    `json:"hasPreviousPage"`
				StartCursor     *string `json:"startCursor"`
				EndCursor       *string `json:"endCursor"`
			} `json:"pageInfo"`
			TotalCount int `json:"totalCount"`
		} `json:"testSuites"`
	}
	if err := c.run(ctx, "testSuites", req, &resp); err != nil {
		return nil, err
	}

	conn := resp.TestSuites
	page := &domain.TestSuitePage{
		Items: make([]domain.TestSuite, 0, len(conn.Edges)),
		PageInfo: domain.PageInfo{
			HasNextPage:     conn.PageInfo.HasNextPage,
			HasPreviousPage: conn.PageInfo.HasPreviousPage,
			StartCursor:     deref(conn.PageInfo.StartCursor),
			EndCursor:       deref(conn.PageInfo.EndCursor),
		},
		TotalCount: conn.TotalCount,
	}
	for i := range conn.Edges {
		page.Items = append(page.Items, *conn.Edges[i].Node.toDomain())
	}
	return page, nil
}

// GetTestSuite fetches a suite with its groups. A null result or a
// "not found" error from the backend maps to domain.ErrTestSuiteNotFound.
func (c *Client) GetTestSuite(ctx context.Context, id string) (*domain.TestSuite, error) {
	req := newRequest(testSuiteDetailQuery)
	req.Var("id", id)

	var resp struct {
		TestSuite *testSuitePayload `json:"testSuite"`
	}
	if err := c.run(ctx, "testSuite", req, &resp); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTestSuiteNotFound
		}
		return nil, err
	}
	if resp.TestSuite == nil {
		return nil, domain.ErrTestSuiteNotFound
	}
	return resp.TestSuite.toDomain(), nil
}

// CreateTestSuite sends dates as RFC 3339 timestamps in UTC.
func (c *Client) CreateTestSuite(ctx context.Context, in ports.CreateTestSuiteInput) (*domain.TestSuite, error) {
	input := map[string]any{
		"name":                 in.Name,
		"estimatedStartDate":   in.EstimatedStartDate.UTC().Format(time.RFC3339),
		"estimatedEndDate":     in.EstimatedEndDate.UTC().Format(time.RFC3339),
		"requireEffortComment": in.RequireEffortComment,
	}
	if in.Description != nil {
		input["description"] = *in.Description
	}
	req := newRequest(createTestSuiteMutation)
	req.Var("input", input)

	var resp struct {
		CreateTestSuite *testSuitePayload `json:"createTestSuite"`
	}
	if err := c.run(ctx, "createTestSuite", req, &resp); err != nil {
		return nil, err
	}
	if resp.CreateTestSuite == nil {
		return nil, &domain.RemoteError{Op: "createTestSuite", Message: "backend returned no suite"}
	}
	return resp.CreateTestSuite.toDomain(), nil
}

func isNotFound(err error) bool {
	var remote *domain.RemoteError
	return errors.As(err, &remote) && strings.Contains(strings.ToLower(remote.Message), "not found")
}
