package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

// Session drives one Store through a CredentialTransport. Each operation has
// a single suspension point: one transport call, then its dispatches.
type Session struct {
	id        string
	store     *Store
	transport ports.CredentialTransport
	audit     ports.AuditSink
	log       zerolog.Logger

	bootstrapOnce sync.Once
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAuditSink records every login, logout and session check outcome.
func WithAuditSink(sink ports.AuditSink) SessionOption {
	return func(s *Session) { s.audit = sink }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession binds a store to a transport. id names the session in logs and
// audit records.
func NewSession(id string, store *Store, transport ports.CredentialTransport, opts ...SessionOption) *Session {
	s := &Session{
		id:        id,
		store:     store,
		transport: transport,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Store returns the store this session drives.
func (s *Session) Store() *Store { return s.store }

// State returns the current auth state.
func (s *Session) State() State { return s.store.Snapshot() }

// Bootstrap runs the initial session check. Only the first call per Session
// does anything.
func (s *Session) Bootstrap(ctx context.Context) {
	s.bootstrapOnce.Do(func() { s.CheckStatus(ctx) })
}

// CheckStatus asks the backend who is logged in and folds the answer into the
// state. Failures of any kind end logged out; loading is released on every
// exit path.
func (s *Session) CheckStatus(ctx context.Context) {
	s.store.Dispatch(LoadingSet{Loading: true})
	defer s.store.Dispatch(LoadingSet{Loading: false})

	var user *domain.AuthUser
	err := guard("whoami", func() error {
		var err error
		user, err = s.transport.WhoAmI(ctx)
		return err
	})

	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("session_id", s.id).Msg("session check failed, treating as logged out")
		s.store.Dispatch(LoggedOut{})
	case user == nil:
		s.store.Dispatch(LoggedOut{})
	default:
		s.store.Dispatch(AuthSucceeded{User: user})
	}

	username := ""
	if user != nil {
		username = user.Username
	}
	s.record(ctx, domain.AuditSessionCheck, username, user != nil, err)
}

// Login validates creds locally, then authenticates through the transport.
// Validation failures touch neither the network nor the state. Any other
// failure is recorded as AuthFailed and also returned to the caller.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	s.store.Dispatch(BeginAuth{})

	var res *ports.LoginResult
	err := guard("login", func() error {
		var err error
		res, err = s.transport.Login(ctx, creds.Username, creds.Password)
		return err
	})
	if err == nil && (res == nil || res.User == nil) {
		err = domain.ErrLoginFailed
	}
	if err != nil {
		s.store.Dispatch(AuthFailed{Message: FailureMessage(err)})
		s.log.Info().Err(err).Str("session_id", s.id).Str("username", creds.Username).Msg("login failed")
		s.record(ctx, domain.AuditLogin, creds.Username, false, err)
		return fmt.Errorf("login: %w", err)
	}

	s.store.Dispatch(AuthSucceeded{User: res.User})
	s.log.Info().Str("session_id", s.id).Str("username", res.User.Username).Str("role", res.User.Role).Msg("login succeeded")
	s.record(ctx, domain.AuditLogin, res.User.Username, true, nil)
	return nil
}

// Logout asks the backend to end the session and clears the local view no
// matter what the backend answered.
func (s *Session) Logout(ctx context.Context) {
	username := ""
	if u := s.store.Snapshot().User; u != nil {
		username = u.Username
	}

	var ok bool
	err := guard("logout", func() error {
		var err error
		ok, err = s.transport.Logout(ctx)
		return err
	})
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("session_id", s.id).Msg("backend logout failed, clearing local session anyway")
	case !ok:
		s.log.Debug().Str("session_id", s.id).Msg("backend did not acknowledge logout")
	}

	s.store.Dispatch(LoggedOut{})
	s.record(ctx, domain.AuditLogout, username, err == nil, err)
}

// ResetError clears the last failure message.
func (s *Session) ResetError() {
	s.store.Dispatch(ErrorCleared{})
}

func (s *Session) record(ctx context.Context, kind domain.AuthAuditKind, username string, success bool, err error) {
	if s.audit == nil {
		return
	}
	ev := domain.AuthAuditEvent{
		SessionID: s.id,
		Kind:      kind,
		Username:  username,
		Success:   success,
		At:        time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if aerr := s.audit.Record(context.WithoutCancel(ctx), ev); aerr != nil {
		s.log.Warn().Err(aerr).Str("session_id", s.id).Str("kind", string(kind)).Msg("audit record failed")
	}
}

// FailureMessage turns a login failure into the message stored in State.Error.
func FailureMessage(err error) string {
	var re *domain.RemoteError
	switch {
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	case errors.Is(err, domain.ErrLoginFailed):
		return "login failed"
	case errors.Is(err, domain.ErrTransport):
		return "backend unavailable, please try again"
	case errors.Is(err, context.DeadlineExceeded):
		return "login timed out"
	default:
		return "an error occurred during login"
	}
}

// errTransportPanic marks a transport call that panicked.
var errTransportPanic = errors.New("transport panicked")

// guard runs fn and converts a panic into an error so the caller's release
// path always runs.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", op, errTransportPanic, r)
		}
	}()
	return fn()
}
