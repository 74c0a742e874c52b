package services

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// AuditTrailSvc exposes the append-only audit trail of a request.
type AuditTrailSvc interface {
	// ListRequestLogs returns the request's entries, most recent first.
	ListRequestLogs(ctx context.Context, actor domain.Actor, requestID string) ([]domain.AuditLogEntry, error)

	// VerifyAuditTrail recomputes the integrity chain and status continuity of the trail.
	VerifyAuditTrail(ctx context.Context, actor domain.Actor, requestID string) (*domain.TrailVerification, error)
}
