package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/testdeck/console/internal/core/ports"
)

var _ ports.CookieStore = (*MemoryCookieStore)(nil)

type memoryItem struct {
	cookies []*http.Cookie
	expires time.Time
}

// MemoryCookieStore is the CookieStore used when no Redis is configured.
// Contents do not survive a restart.
type MemoryCookieStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryCookieStore) Load(_ context.Context, sessionID string) ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[sessionID]
	if !ok {
		return nil, nil
	}
	if !it.expires.IsZero() && m.now().After(it.expires) {
		delete(m.items, sessionID)
		return nil, nil
	}
	return copyCookies(it.cookies), nil
}

func (m *MemoryCookieStore) Save(_ context.Context, sessionID string, cookies []*http.Cookie, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(cookies) == 0 {
		delete(m.items, sessionID)
		return nil
	}
	it := memoryItem{cookies: copyCookies(cookies)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.items[sessionID] = it
	return nil
}

func (m *MemoryCookieStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, sessionID)
	return nil
}

// PurgeExpired drops every expired item and returns how many it removed.
func (m *MemoryCookieStore) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, it := range m.items {
		if !it.expires.IsZero() && now.After(it.expires) {
			delete(m.items, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored items, expired ones included.
func (m *MemoryCookieStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func copyCookies(in []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		cc := *c
		out = append(out, &cc)
	}
	return out
}
