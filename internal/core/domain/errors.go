package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrLoginFailed is returned when the backend answers a login without a user.
	ErrLoginFailed = errors.New("login failed")
	// ErrTransport wraps network and protocol failures talking to the backend.
	ErrTransport = errors.New("backend unavailable")
	// ErrUnauthenticated is returned when a request needs a logged-in user.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the user's role does not allow the operation.
	ErrForbidden = errors.New("access forbidden")
	// ErrTestSuiteNotFound is returned when a suite id does not resolve.
	ErrTestSuiteNotFound = errors.New("test suite not found")
	// ErrInvalidInput is returned for rejected form or query input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionInvalid is returned for a missing, expired or tampered console session cookie.
	ErrSessionInvalid = errors.New("invalid console session")
)

// RemoteError carries a human-readable failure reported by the backend
// (for example a GraphQL error message on a rejected login).
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// ValidationError is a local, pre-flight rejection with one message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}
