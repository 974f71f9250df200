package web

import (
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

// Layout carries what every page needs.
type Layout struct {
	Title string
	User  *domain.AuthUser
}

type LoginView struct {
	Layout
	Username    string
	From        string
	Error       string
	FieldErrors map[string]string
}

type CheckingView struct {
	Layout
	RetryAfter int
}

type HomeView struct {
	Layout
	Counts []StatusCount
	Total  int
}

type StatusCount struct {
	Status domain.SuiteStatus
	Count  int
}

type SuitesView struct {
	Layout
	Result      *ports.ListTestSuitesResult
	Filter      SuiteFilter
	Statuses    []domain.SuiteStatus
	Form        SuiteForm
	FieldErrors map[string]string
	Error       string
}

type SuiteFilter struct {
	Status   string
	Search   string
	DateFrom string
	DateTo   string
	PageSize int
}

type SuiteForm struct {
	Name                 string
	Description          string
	EstimatedStartDate   string
	EstimatedEndDate     string
	RequireEffortComment bool
}

type SuiteView struct {
	Layout
	Suite *domain.TestSuite
}

type ErrorView struct {
	Layout
	Status  int
	Message string
}
