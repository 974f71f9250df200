package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleManager, true},
		{RoleTester, false},
		{"Admin", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Can(tt.role, PermCreateTestSuite); got != tt.want {
			t.Fatalf("Can(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
	if Can(RoleAdmin, Permission("unknown")) {
		t.Fatalf("unknown permission must not be granted")
	}
}

func TestAuthUser_EqualAndClone(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	u := &AuthUser{ID: "u1", Username: "alice", Role: RoleTester, LastLoginAt: &at}

	c := u.Clone()
	if !u.Equal(c) {
		t.Fatalf("clone must equal original")
	}
	*c.LastLoginAt = at.Add(time.Hour)
	if u.LastLoginAt.Equal(*c.LastLoginAt) {
		t.Fatalf("clone shares LastLoginAt with original")
	}
	if u.Equal(c) {
		t.Fatalf("users with different last login must differ")
	}

	var none *AuthUser
	if !none.Equal(nil) || none.Equal(u) || none.Clone() != nil {
		t.Fatalf("nil user handling broken")
	}
}

func TestParseSuiteStatus(t *testing.T) {
	tests := []struct {
		in   string
		want SuiteStatus
		ok   bool
	}{
		{"", "", true},
		{" in_progress ", SuiteInProgress, true},
		{"COMPLETED", SuiteCompleted, true},
		{"ARCHIVED", "ARCHIVED", false},
	}
	for _, tt := range tests {
		got, ok := ParseSuiteStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseSuiteStatus(%q) = %q, %v", tt.in, got, ok)
		}
	}
	if SuiteSuspended.Label() != "Suspended" || SuiteStatus("X").Label() != "X" {
		t.Fatalf("unexpected labels")
	}
}

func TestClampedProgress(t *testing.T) {
	for in, want := range map[float64]float64{-5: 0, 42.5: 42.5, 180: 100} {
		if got := (TestSuite{Progress: in}).ClampedProgress(); got != want {
			t.Fatalf("ClampedProgress(%v) = %v", in, got)
		}
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "password is required", "name": "name is required"}}
	if err.Error() != "name is required; password is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("validation error must match ErrInvalidInput")
	}
	var none *ValidationError
	if none.Field("x") != "" || (&ValidationError{}).Error() != ErrInvalidInput.Error() {
		t.Fatalf("empty validation error handling broken")
	}
}
