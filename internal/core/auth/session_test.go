package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

type stubTransport struct {
	loginFn  func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	logoutFn func(ctx context.Context) (bool, error)
	whoAmIFn func(ctx context.Context) (*domain.AuthUser, error)

	mu     sync.Mutex
	logins int
	whoAms int
}

func (s *stubTransport) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	s.mu.Lock()
	s.logins++
	s.mu.Unlock()
	return s.loginFn(ctx, username, password)
}

func (s *stubTransport) Logout(ctx context.Context) (bool, error) {
	return s.logoutFn(ctx)
}

func (s *stubTransport) WhoAmI(ctx context.Context) (*domain.AuthUser, error) {
	s.mu.Lock()
	s.whoAms++
	s.mu.Unlock()
	return s.whoAmIFn(ctx)
}

type recordingSink struct {
	events []domain.AuthAuditEvent
	err    error
}

func (r *recordingSink) Record(_ context.Context, ev domain.AuthAuditEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func recordActions(store *Store) *[]string {
	var names []string
	store.observers = append(store.observers, func(a Action, _, _ State) {
		names = append(names, ActionName(a))
	})
	return &names
}

func TestBootstrap_NoUserEndsUnauthenticated(t *testing.T) {
	tr := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) { return nil, nil }}
	store := NewStore()
	actions := recordActions(store)
	sess := NewSession("s1", store, tr)

	sess.Bootstrap(context.Background())

	st := store.Snapshot()
	if st.Logical() != Unauthenticated || st.IsLoading {
		t.Fatalf("expected unauthenticated and not loading, got %+v", st)
	}
	want := []string{"loading_set", "logged_out", "loading_set"}
	if len(*actions) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, *actions)
	}
	for i := range want {
		if (*actions)[i] != want[i] {
			t.Fatalf("expected actions %v, got %v", want, *actions)
		}
	}
}

func TestBootstrap_TransportErrorMatchesNoUser(t *testing.T) {
	failing := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) {
		return nil, errors.New("connection refused")
	}}
	empty := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) { return nil, nil }}

	a := NewSession("a", NewStore(), failing)
	b := NewSession("b", NewStore(), empty)
	a.Bootstrap(context.Background())
	b.Bootstrap(context.Background())

	if !a.State().Equal(b.State()) {
		t.Fatalf("error path %+v differs from no-user path %+v", a.State(), b.State())
	}
	if a.State().IsLoading {
		t.Fatalf("loading stuck after transport error")
	}
}

func TestBootstrap_PanickingTransportReleasesLoading(t *testing.T) {
	tr := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) { panic("boom") }}
	sess := NewSession("s1", NewStore(), tr)

	sess.Bootstrap(context.Background())

	st := sess.State()
	if st.IsLoading || st.IsAuthenticated {
		t.Fatalf("expected released unauthenticated state, got %+v", st)
	}
}

func TestBootstrap_ValidUserAuthenticates(t *testing.T) {
	tr := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) { return testUser("u1"), nil }}
	sess := NewSession("s1", NewStore(), tr)

	sess.Bootstrap(context.Background())

	st := sess.State()
	if !st.IsAuthenticated || st.IsLoading || st.User == nil || st.User.ID != "u1" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	tr := &stubTransport{whoAmIFn: func(context.Context) (*domain.AuthUser, error) { return nil, nil }}
	sess := NewSession("s1", NewStore(), tr)

	sess.Bootstrap(context.Background())
	sess.Bootstrap(context.Background())
	if tr.whoAms != 1 {
		t.Fatalf("expected one session check, got %d", tr.whoAms)
	}

	sess.CheckStatus(context.Background())
	if tr.whoAms != 2 {
		t.Fatalf("CheckStatus must always hit the backend, got %d calls", tr.whoAms)
	}
}

func TestLogin_Success(t *testing.T) {
	tr := &stubTransport{loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
		if username != "alice" || password != "secret1" {
			t.Fatalf("unexpected args: %s %s", username, password)
		}
		return &ports.LoginResult{User: testUser("u1"), Token: "t"}, nil
	}}
	sink := &recordingSink{}
	sess := NewSession("s1", NewStore(), tr, WithAuditSink(sink))

	if err := sess.Login(context.Background(), Credentials{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	st := sess.State()
	if !st.IsAuthenticated || st.User.ID != "u1" || st.Error != "" || st.IsLoading {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(sink.events) != 1 || sink.events[0].Kind != domain.AuditLogin || !sink.events[0].Success {
		t.Fatalf("unexpected audit events %+v", sink.events)
	}
}

func TestLogin_ShortPasswordRejectedLocally(t *testing.T) {
	tr := &stubTransport{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		t.Fatalf("transport must not be called")
		return nil, nil
	}}
	store := NewStore()
	actions := recordActions(store)
	sess := NewSession("s1", store, tr)

	err := sess.Login(context.Background(), Credentials{Username: "alice", Password: "12345"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field("password") == "" {
		t.Fatalf("expected password field error, got %+v", ve.Fields)
	}
	if len(*actions) != 0 {
		t.Fatalf("validation failure must not dispatch, got %v", *actions)
	}
	if tr.logins != 0 {
		t.Fatalf("expected no transport call")
	}
}

func TestLogin_RemoteRejectionRecordedAndReturned(t *testing.T) {
	tr := &stubTransport{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, &domain.RemoteError{Op: "login", Message: "invalid username or password"}
	}}
	sess := NewSession("s1", NewStore(), tr)

	err := sess.Login(context.Background(), Credentials{Username: "alice", Password: "wrongpass"})
	if err == nil {
		t.Fatalf("expected error")
	}

	st := sess.State()
	if st.IsAuthenticated || st.IsLoading || st.User != nil {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Error != "invalid username or password" {
		t.Fatalf("unexpected error message %q", st.Error)
	}
}

func TestLogin_AbsentUserIsFailure(t *testing.T) {
	tr := &stubTransport{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{Token: "orphan"}, nil
	}}
	sess := NewSession("s1", NewStore(), tr)

	err := sess.Login(context.Background(), Credentials{Username: "alice", Password: "secret1"})
	if !errors.Is(err, domain.ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
	if sess.State().Error == "" {
		t.Fatalf("expected error recorded in state")
	}
}

func TestLogin_SuccessClearsPreviousError(t *testing.T) {
	calls := 0
	tr := &stubTransport{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		calls++
		if calls == 1 {
			return nil, domain.ErrLoginFailed
		}
		return &ports.LoginResult{User: testUser("u1")}, nil
	}}
	sess := NewSession("s1", NewStore(), tr)
	creds := Credentials{Username: "alice", Password: "secret1"}

	_ = sess.Login(context.Background(), creds)
	if err := sess.Login(context.Background(), creds); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if sess.State().Error != "" {
		t.Fatalf("stale error survived success: %q", sess.State().Error)
	}
}

func TestLogout_NetworkFailureStillClears(t *testing.T) {
	tr := &stubTransport{
		whoAmIFn: func(context.Context) (*domain.AuthUser, error) { return testUser("u1"), nil },
		logoutFn: func(context.Context) (bool, error) { return false, errors.New("network partition") },
	}
	sink := &recordingSink{err: errors.New("audit down")}
	sess := NewSession("s1", NewStore(), tr, WithAuditSink(sink))
	sess.Bootstrap(context.Background())

	sess.Logout(context.Background())

	if !sess.State().Equal(State{}) {
		t.Fatalf("expected clean logged out tuple, got %+v", sess.State())
	}
	last := sink.events[len(sink.events)-1]
	if last.Kind != domain.AuditLogout || last.Success || last.Username != "alice" {
		t.Fatalf("unexpected audit event %+v", last)
	}
}

func TestResetError(t *testing.T) {
	tr := &stubTransport{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, domain.ErrLoginFailed
	}}
	sess := NewSession("s1", NewStore(), tr)
	_ = sess.Login(context.Background(), Credentials{Username: "alice", Password: "secret1"})

	sess.ResetError()
	if sess.State().Error != "" {
		t.Fatalf("expected error cleared")
	}
}

func TestFailureMessage(t *testing.T) {
	cases := map[string]error{
		"boom":                                  &domain.RemoteError{Message: "boom"},
		"login failed":                          domain.ErrLoginFailed,
		"backend unavailable, please try again": errors.Join(domain.ErrTransport, errors.New("dial")),
		"login timed out":                       context.DeadlineExceeded,
		"an error occurred during login":        errors.New("weird"),
	}
	for want, err := range cases {
		if got := FailureMessage(err); got != want {
			t.Fatalf("FailureMessage(%v) = %q, want %q", err, got, want)
		}
	}
}
