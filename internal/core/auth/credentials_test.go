package auth

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/testdeck/console/internal/core/domain"
)

func TestCredentialsValidate(t *testing.T) {
	cases := []struct {
		name   string
		creds  Credentials
		fields map[string]string
	}{
		{"valid", Credentials{Username: "alice", Password: "secret1"}, nil},
		{"blank username", Credentials{Username: "   ", Password: "secret1"}, map[string]string{"username": "username is required"}},
		{"blank password", Credentials{Username: "alice", Password: "      "}, map[string]string{"password": "password is required"}},
		{"short password", Credentials{Username: "alice", Password: "12345"}, map[string]string{"password": "password must be at least 6 characters"}},
		{"both missing", Credentials{}, map[string]string{"username": "username is required", "password": "password is required"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.creds.Validate()
			if tc.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("validation error must match ErrInvalidInput")
			}
			if len(ve.Fields) != len(tc.fields) {
				t.Fatalf("got fields %v, want %v", ve.Fields, tc.fields)
			}
			for k, v := range tc.fields {
				if ve.Fields[k] != v {
					t.Fatalf("field %s: got %q, want %q", k, ve.Fields[k], v)
				}
			}
		})
	}
}

func TestMustRegister_PanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for an empty tag")
		}
	}()
	mustRegister(validator.New(), "", validators.NotBlank)
}
