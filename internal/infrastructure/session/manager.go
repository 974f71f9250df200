// Package session maps browser sessions onto per-session auth state.
//
// Each console session owns one auth.Store, one auth.Session and one backend
// client with its own cookie jar. The first time a session is seen in this
// process its bootstrap check is queued; later requests reuse the entry.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/core/ports"
	"github.com/testdeck/console/internal/infrastructure/queue"
)

// Backend is what one session needs from the backend client.
type Backend interface {
	ports.CredentialTransport
	ports.TestSuiteGateway
	Cookies() []*http.Cookie
}

// BackendFactory builds a backend client seeded with persisted cookies.
type BackendFactory func(cookies []*http.Cookie) (Backend, error)

// Enqueuer accepts background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// Entry is the live state of one console session.
type Entry struct {
	ID      string
	Session *auth.Session
	Backend Backend

	mu       sync.Mutex
	lastSeen time.Time
}

func (e *Entry) Store() *auth.Store { return e.Session.Store() }

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// Config holds the manager settings.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Manager owns all live session entries of this process.
type Manager struct {
	tokens   *Tokens
	ttl      time.Duration
	factory  BackendFactory
	cookies  ports.CookieStore
	audit    ports.AuditSink
	queue    Enqueuer
	observer auth.Observer
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// Option configures a Manager.
type Option func(*Manager)

func WithAuditSink(sink ports.AuditSink) Option {
	return func(m *Manager) { m.audit = sink }
}

// WithStoreObserver attaches o to every store the manager creates.
func WithStoreObserver(o auth.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func NewManager(cfg Config, factory BackendFactory, cookies ports.CookieStore, q Enqueuer, opts ...Option) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	m := &Manager{
		tokens:  NewTokens(cfg.Secret, cfg.TTL),
		ttl:     cfg.TTL,
		factory: factory,
		cookies: cookies,
		queue:   q,
		log:     zerolog.Nop(),
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a brand-new console session and returns it with its signed
// cookie value.
func (m *Manager) Create(ctx context.Context) (*Entry, string, time.Time, error) {
	id := uuid.NewString()
	token, exp, err := m.tokens.Issue(id)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	e, err := m.mount(ctx, id, nil)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return e, token, exp, nil
}

// Resolve returns the entry for a valid session token. A session that is
// valid but unknown to this process (for example after a restart) is
// re-mounted with its persisted backend cookies.
func (m *Manager) Resolve(ctx context.Context, token string) (*Entry, error) {
	id, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if ok {
		e.touch(m.now())
		return e, nil
	}

	cookies, err := m.cookies.Load(ctx, id)
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("could not load backend cookies, starting empty")
		cookies = nil
	}
	return m.mount(ctx, id, cookies)
}

// mount registers a new entry and queues its bootstrap. If another request
// mounted the same id first, that entry wins.
func (m *Manager) mount(ctx context.Context, id string, cookies []*http.Cookie) (*Entry, error) {
	backend, err := m.factory(cookies)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	storeOpts := []auth.StoreOption{auth.WithLogger(m.log)}
	if m.observer != nil {
		storeOpts = append(storeOpts, auth.WithObserver(m.observer))
	}
	sessOpts := []auth.SessionOption{auth.WithSessionLogger(m.log)}
	if m.audit != nil {
		sessOpts = append(sessOpts, auth.WithAuditSink(m.audit))
	}
	e := &Entry{
		ID:       id,
		Session:  auth.NewSession(id, auth.NewStore(storeOpts...), backend, sessOpts...),
		Backend:  backend,
		lastSeen: m.now(),
	}

	m.mu.Lock()
	if existing, ok := m.entries[id]; ok {
		m.mu.Unlock()
		e.Store().Close()
		existing.touch(m.now())
		return existing, nil
	}
	m.entries[id] = e
	m.mu.Unlock()

	m.log.Debug().Str("session_id", id).Int("cookies", len(cookies)).Msg("session mounted")
	m.enqueueBootstrap(ctx, e)
	return e, nil
}

func (m *Manager) enqueueBootstrap(ctx context.Context, e *Entry) {
	job := queue.Job{
		Key:  e.ID,
		Name: "bootstrap",
		Run: func(ctx context.Context) error {
			e.Session.Bootstrap(ctx)
			return m.persist(ctx, e)
		},
	}
	if err := m.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		// The store starts loading; it must settle even without a worker.
		m.log.Warn().Err(err).Str("session_id", e.ID).Msg("bootstrap not queued, running inline")
		go func() { _ = job.Run(context.WithoutCancel(ctx)) }()
	}
}

// Login authenticates the session and saves the resulting backend cookies.
func (m *Manager) Login(ctx context.Context, e *Entry, creds auth.Credentials) error {
	if err := e.Session.Login(ctx, creds); err != nil {
		return err
	}
	if err := m.persist(ctx, e); err != nil {
		m.log.Warn().Err(err).Str("session_id", e.ID).Msg("could not persist backend cookies")
	}
	return nil
}

// Logout ends the session on the backend and forgets its cookies. The entry
// stays mounted in the logged-out state.
func (m *Manager) Logout(ctx context.Context, e *Entry) {
	e.Session.Logout(ctx)
	if err := m.cookies.Delete(context.WithoutCancel(ctx), e.ID); err != nil {
		m.log.Warn().Err(err).Str("session_id", e.ID).Msg("could not delete backend cookies")
	}
}

// CheckStatus re-runs the session check now and saves refreshed cookies.
func (m *Manager) CheckStatus(ctx context.Context, e *Entry) {
	e.Session.CheckStatus(ctx)
	if err := m.persist(ctx, e); err != nil {
		m.log.Warn().Err(err).Str("session_id", e.ID).Msg("could not persist backend cookies")
	}
}

func (m *Manager) persist(ctx context.Context, e *Entry) error {
	return m.cookies.Save(context.WithoutCancel(ctx), e.ID, e.Backend.Cookies(), m.ttl)
}

// Evict drops an entry and closes its store. Persisted cookies are kept so the
// session can be re-mounted until they expire.
func (m *Manager) Evict(id string) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if ok {
		e.Store().Close()
	}
	return ok
}

// Len returns the number of mounted sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// expiringStore is a CookieStore that does not expire items on its own.
type expiringStore interface {
	PurgeExpired() int
}

// Sweep evicts entries idle for longer than the TTL and returns how many. It
// also purges expired cookies from stores that keep them until asked.
func (m *Manager) Sweep() int {
	if es, ok := m.cookies.(expiringStore); ok {
		if n := es.PurgeExpired(); n > 0 {
			m.log.Debug().Int("purged", n).Msg("expired backend cookies purged")
		}
	}

	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	var stale []string
	for id, e := range m.entries {
		if e.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	n := 0
	for _, id := range stale {
		if m.Evict(id) {
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle sessions every interval until ctx ends.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info().Int("evicted", n).Int("active", m.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
