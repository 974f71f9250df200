// Package graphql talks to the test-management backend over GraphQL/HTTP.
// One Client exists per console session; it owns the cookie jar that carries
// the backend session, so the console itself never handles the credential.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	gql "github.com/machinebox/graphql"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/testdeck/console/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the backend endpoint settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Backend builds per-session clients that share one HTTP connection pool.
type Backend struct {
	endpoint  *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	log       zerolog.Logger
}

// NewBackend validates the endpoint and prepares a shared transport.
func NewBackend(cfg Config, log zerolog.Logger) (*Backend, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse backend endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend endpoint %q: unsupported scheme", cfg.Endpoint)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Backend{
		endpoint:  u,
		timeout:   timeout,
		transport: http.DefaultTransport.(*http.Transport).Clone(),
		log:       log,
	}, nil
}

// Endpoint returns the GraphQL endpoint URL.
func (b *Backend) Endpoint() string { return b.endpoint.String() }

// NewClient returns a client with a fresh cookie jar seeded with cookies.
func (b *Backend) NewClient(cookies []*http.Cookie) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if len(cookies) > 0 {
		jar.SetCookies(b.endpoint, cookies)
	}

	hc := &http.Client{Transport: b.transport, Jar: jar}
	c := &Client{
		gql:      gql.NewClient(b.endpoint.String(), gql.WithHTTPClient(hc)),
		jar:      jar,
		endpoint: b.endpoint,
		timeout:  b.timeout,
		log:      b.log,
	}
	c.gql.Log = func(s string) { c.log.Trace().Msg(s) }
	return c, nil
}

// Ping checks that the backend answers HTTP at all. Any status below 500
// counts as reachable.
func (b *Backend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := (&http.Client{Transport: b.transport}).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", domain.ErrTransport, resp.StatusCode)
	}
	return nil
}

// Client is a per-session GraphQL client. It implements
// ports.CredentialTransport and ports.TestSuiteGateway.
type Client struct {
	gql      *gql.Client
	jar      http.CookieJar
	endpoint *url.URL
	timeout  time.Duration
	log      zerolog.Logger
}

// Cookies returns the backend cookies currently held for this session.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.endpoint)
}

// run executes one operation with the client timeout and classifies errors.
func (c *Client) run(ctx context.Context, op string, req *gql.Request, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.gql.Run(ctx, req, resp)
	c.log.Debug().
		Str("op", op).
		Dur("elapsed", time.Since(start)).
		Bool("ok", err == nil).
		Msg("backend call")
	if err != nil {
		return classify(op, err)
	}
	return nil
}

const gqlErrPrefix = "graphql: "

// classify separates errors reported by the backend in the GraphQL response
// from failures to get a usable response at all.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
	}
	msg := err.Error()
	if strings.HasPrefix(msg, gqlErrPrefix) && !strings.HasPrefix(msg, gqlErrPrefix+"server returned") {
		return &domain.RemoteError{Op: op, Message: strings.TrimPrefix(msg, gqlErrPrefix)}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
}

func newRequest(doc string) *gql.Request {
	return gql.NewRequest(doc)
}
