package ports

import (
	"context"
	"net/http"
	"time"
)

// CookieStore persists the backend session cookies of a console session so a
// console restart can re-bootstrap. The cookies are opaque to the console.
type CookieStore interface {
	Load(ctx context.Context, sessionID string) ([]*http.Cookie, error)
	Save(ctx context.Context, sessionID string, cookies []*http.Cookie, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
