package handler

import (
	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	From     string `json:"-"        form:"from" query:"from"`
}

func (r loginRequest) credentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// sessionResponse is the JSON view of a session's auth state.
type sessionResponse struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsLoading       bool             `json:"isLoading"`
	User            *domain.AuthUser `json:"user"`
	Error           string           `json:"error,omitempty"`
	State           string           `json:"state" example:"authenticated"`
}

func toSessionResponse(s auth.State) sessionResponse {
	return sessionResponse{
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
		User:            s.User,
		Error:           s.Error,
		State:           s.Logical().String(),
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
