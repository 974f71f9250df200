// Package audit holds AuditSink implementations that need no storage.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

var _ ports.AuditSink = LogSink{}

// LogSink writes audit events to the structured log. It is used when no
// MongoDB is configured.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Record(_ context.Context, ev domain.AuthAuditEvent) error {
	e := s.Log.Info()
	if !ev.Success {
		e = s.Log.Warn()
	}
	e.Str("session_id", ev.SessionID).
		Str("kind", string(ev.Kind)).
		Str("username", ev.Username).
		Bool("success", ev.Success).
		Str("error", ev.Error).
		Time("at", ev.At).
		Msg("auth audit")
	return nil
}
