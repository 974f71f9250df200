package auth

import "github.com/testdeck/console/internal/core/domain"

// Action is the closed set of transitions accepted by Reduce. The unexported
// marker method keeps the set sealed to this package.
type Action interface {
	actionName() string
}

// BeginAuth marks a login as in flight.
type BeginAuth struct{}

// AuthSucceeded carries the user confirmed by the backend.
type AuthSucceeded struct {
	User *domain.AuthUser
}

// AuthFailed carries the human-readable message of a failed attempt.
type AuthFailed struct {
	Message string
}

// LoggedOut clears the session view.
type LoggedOut struct{}

// ErrorCleared drops the last error and nothing else.
type ErrorCleared struct{}

// LoadingSet forces the loading flag.
type LoadingSet struct {
	Loading bool
}

func (BeginAuth) actionName() string     { return "begin_auth" }
func (AuthSucceeded) actionName() string { return "auth_succeeded" }
func (AuthFailed) actionName() string    { return "auth_failed" }
func (LoggedOut) actionName() string     { return "logged_out" }
func (ErrorCleared) actionName() string  { return "error_cleared" }
func (LoadingSet) actionName() string    { return "loading_set" }

// ActionName returns the stable name of an action, used for logs and metrics.
func ActionName(a Action) string {
	if a == nil {
		return "nil"
	}
	return a.actionName()
}
