package domain

import (
	"strings"
	"time"
)

// SuiteStatus represents the lifecycle state of a test suite or group.
type SuiteStatus string

const (
	SuitePreparation SuiteStatus = "PREPARATION"
	SuiteInProgress  SuiteStatus = "IN_PROGRESS"
	SuiteCompleted   SuiteStatus = "COMPLETED"
	SuiteSuspended   SuiteStatus = "SUSPENDED"
)

// SuiteStatuses lists every status in display order.
var SuiteStatuses = []SuiteStatus{SuitePreparation, SuiteInProgress, SuiteCompleted, SuiteSuspended}

var suiteStatusLabels = map[SuiteStatus]string{
	SuitePreparation: "Preparation",
	SuiteInProgress:  "In progress",
	SuiteCompleted:   "Completed",
	SuiteSuspended:   "Suspended",
}

// ParseSuiteStatus accepts the wire form in any case. Empty input yields ("", true).
func ParseSuiteStatus(s string) (SuiteStatus, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", true
	}
	st := SuiteStatus(s)
	_, ok := suiteStatusLabels[st]
	return st, ok
}

// Label returns the display label, falling back to the raw value.
func (s SuiteStatus) Label() string {
	if l, ok := suiteStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// TestGroup is a named, ordered collection of test cases inside a suite.
type TestGroup struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	DisplayOrder int         `json:"displayOrder"`
	Status       SuiteStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TestSuite is the top-level unit of test planning.
type TestSuite struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	Status               SuiteStatus `json:"status"`
	EstimatedStartDate   time.Time   `json:"estimatedStartDate"`
	EstimatedEndDate     time.Time   `json:"estimatedEndDate"`
	RequireEffortComment bool        `json:"requireEffortComment"`
	Progress             float64     `json:"progress"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
	Groups               []TestGroup `json:"groups,omitempty"`
}

// ClampedProgress returns Progress bounded to [0, 100].
func (s TestSuite) ClampedProgress() float64 {
	switch {
	case s.Progress < 0:
		return 0
	case s.Progress > 100:
		return 100
	default:
		return s.Progress
	}
}

// PageInfo mirrors the backend connection page info.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// TestSuitePage is one page of suites as returned by the backend.
type TestSuitePage struct {
	Items      []TestSuite `json:"items"`
	PageInfo   PageInfo    `json:"pageInfo"`
	TotalCount int         `json:"totalCount"`
}
