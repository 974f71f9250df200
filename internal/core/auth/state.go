// Package auth holds the console's authentication state machine: the State
// tuple, the closed set of actions that change it, the Store that owns one
// State per browser session, the Session operations (bootstrap, login,
// logout) that drive it through a CredentialTransport, and the route guard
// decision derived from it.
package auth

import "github.com/testdeck/console/internal/core/domain"

// State is the canonical auth tuple. Error == "" means no error.
type State struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsLoading       bool             `json:"isLoading"`
	User            *domain.AuthUser `json:"user"`
	Error           string           `json:"error,omitempty"`
}

// InitialState is the state of a freshly mounted session: nothing confirmed yet.
func InitialState() State {
	return State{IsLoading: true}
}

// LogicalState is a classification derived from State, never stored.
type LogicalState int

const (
	Unknown LogicalState = iota
	Authenticated
	Unauthenticated
)

func (l LogicalState) String() string {
	switch l {
	case Unknown:
		return "unknown"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Logical classifies the state.
func (s State) Logical() LogicalState {
	switch {
	case s.IsAuthenticated:
		return Authenticated
	case s.IsLoading:
		return Unknown
	default:
		return Unauthenticated
	}
}

// Equal compares two states field by field, users by payload.
func (s State) Equal(o State) bool {
	return s.IsAuthenticated == o.IsAuthenticated &&
		s.IsLoading == o.IsLoading &&
		s.Error == o.Error &&
		s.User.Equal(o.User)
}

// clone returns a copy that shares nothing mutable with s.
func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}
