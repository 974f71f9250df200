package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/testdeck/console/internal/core/ports"
)

var _ ports.CookieStore = (*CookieStore)(nil)

// CookieStore keeps the backend cookies of each console session in Redis.
// Key format: console:cookies:<session_id>
type CookieStore struct {
	client *redis.Client
}

// NewCookieStore creates a CookieStore wrapping the given Redis client.
func NewCookieStore(client *redis.Client) *CookieStore {
	return &CookieStore{client: client}
}

// storedCookie is the persisted subset of http.Cookie. Request-only and
// raw fields are not kept.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// Load returns the cookies saved for sessionID, or nil when none are stored.
func (s *CookieStore) Load(ctx context.Context, sessionID string) ([]*http.Cookie, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	return decodeCookies(raw)
}

// Save replaces the stored cookies. An empty set deletes the key.
func (s *CookieStore) Save(ctx context.Context, sessionID string, cookies []*http.Cookie, ttl time.Duration) error {
	if len(cookies) == 0 {
		return s.Delete(ctx, sessionID)
	}
	raw, err := encodeCookies(cookies)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	return nil
}

func (s *CookieStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cookies: %w", err)
	}
	return nil
}

func (s *CookieStore) key(sessionID string) string {
	return fmt.Sprintf("console:cookies:%s", sessionID)
}

func encodeCookies(cookies []*http.Cookie) ([]byte, error) {
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode cookies: %w", err)
	}
	return raw, nil
}

func decodeCookies(raw []byte) ([]*http.Cookie, error) {
	var in []storedCookie
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out, nil
}
