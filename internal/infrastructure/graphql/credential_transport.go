package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

var _ ports.CredentialTransport = (*Client)(nil)

type userPayload struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func (p *userPayload) toDomain() *domain.AuthUser {
	if p == nil {
		return nil
	}
	return &domain.AuthUser{
		ID:          p.ID,
		Username:    p.Username,
		Role:        p.Role,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		LastLoginAt: p.LastLoginAt,
	}
}

// Login runs the login mutation. The backend sets its session cookie on the
// response, which lands in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	req := newRequest(loginMutation)
	req.Var("username", username)
	req.Var("password", password)

	var resp struct {
		Login *struct {
			Token        string       `json:"token"`
			RefreshToken string       `json:"refreshToken"`
			User         *userPayload `json:"user"`
			ExpiresAt    time.Time    `json:"expiresAt"`
		} `json:"login"`
	}
	if err := c.run(ctx, "login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Login == nil || resp.Login.User == nil {
		return nil, domain.ErrLoginFailed
	}
	return &ports.LoginResult{
		User:         resp.Login.User.toDomain(),
		Token:        resp.Login.Token,
		RefreshToken: resp.Login.RefreshToken,
		ExpiresAt:    resp.Login.ExpiresAt,
	}, nil
}

// Logout runs the logout mutation. The session is identified by the cookie in
// the jar; the refresh token argument is sent empty.
func (c *Client) Logout(ctx context.Context) (bool, error) {
	req := newRequest(logoutMutation)
	req.Var("refreshToken", "")

	var resp struct {
		Logout bool `json:"logout"`
	}
	if err := c.run(ctx, "logout", req, &resp); err != nil {
		return false, err
	}
	return resp.Logout, nil
}

// WhoAmI asks the backend for the current user, bypassing any HTTP cache. A
// GraphQL error or a null user both mean "not logged in".
func (c *Client) WhoAmI(ctx context.Context) (*domain.AuthUser, error) {
	req := newRequest(meQuery)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	var resp struct {
		Me *userPayload `json:"me"`
	}
	err := c.run(ctx, "me", req, &resp)
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote):
		c.log.Debug().Str("reason", remote.Message).Msg("session check rejected by backend")
		return nil, nil
	case err != nil:
		return nil, err
	}
	return resp.Me.toDomain(), nil
}
