package ports

import (
	"context"
	"time"

	"github.com/testdeck/console/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login. Token fields are
// session artifacts held by the transport; the console never inspects them.
type LoginResult struct {
	User         *domain.AuthUser
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

// CredentialTransport is the remote boundary for login, logout and session checks.
type CredentialTransport interface {
	// Login authenticates and establishes the backend session. A result without
	// a user is a failure.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout invalidates the session identified by transport-held credentials.
	Logout(ctx context.Context) (bool, error)
	// WhoAmI always re-validates against the backend. "Not logged in" is
	// reported as (nil, nil), not as an error.
	WhoAmI(ctx context.Context) (*domain.AuthUser, error)
}
