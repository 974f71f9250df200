package ports

import (
	"context"

	"github.com/testdeck/console/internal/core/domain"
)

// AuditSink receives auth audit events. Failures are logged by callers and
// never affect the auth flow.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuthAuditEvent) error
}
