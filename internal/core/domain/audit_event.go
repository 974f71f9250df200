package domain

import "time"

// AuthAuditKind names the auth operation an audit entry records.
type AuthAuditKind string

const (
	AuditLogin        AuthAuditKind = "login"
	AuditLogout       AuthAuditKind = "logout"
	AuditSessionCheck AuthAuditKind = "session_check"
)

// AuthAuditEvent records the outcome of one auth operation for one console session.
type AuthAuditEvent struct {
	SessionID string
	Kind      AuthAuditKind
	Username  string
	Success   bool
	Error     string
	At        time.Time
}
