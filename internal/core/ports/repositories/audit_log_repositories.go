package repositories

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// AuditLogReader defines read operations over the audit trail.
// There is deliberately no writer: entries are appended only by RequestWorkflowWriter.
type AuditLogReader interface {
	// ListAuditLogsByRequestID returns every entry of a request, most recent first.
	ListAuditLogsByRequestID(ctx context.Context, requestID string) ([]domain.AuditLogEntry, error)
}
