package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
)

type auditTrailService struct {
	BaseService
	requestRepo  portsrepo.RequestReader
	auditLogRepo portsrepo.AuditLogReader
	guard        portssvc.AuthorizationGuardSvc
}

// NewAuditTrailService creates the read side of the audit trail.
func NewAuditTrailService(requestRepo portsrepo.RequestReader, auditLogRepo portsrepo.AuditLogReader, guard portssvc.AuthorizationGuardSvc) portssvc.AuditTrailSvc {
	return &auditTrailService{
		requestRepo:  requestRepo,
		auditLogRepo: auditLogRepo,
		guard:        guard,
	}
}

var _ portssvc.AuditTrailSvc = (*auditTrailService)(nil)

// ListRequestLogs returns the request's entries, most recent first.
func (s *auditTrailService) ListRequestLogs(ctx context.Context, actor domain.Actor, requestID string) ([]domain.AuditLogEntry, error) {
	if _, err := s.authorizedRequest(ctx, actor, requestID); err != nil {
		return nil, err
	}

	entries, err := s.auditLogRepo.ListAuditLogsByRequestID(ctx, requestID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit logs", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

// VerifyAuditTrail walks the trail oldest first, recomputing each integrity hash
// and checking that every fromStatus continues the previous toStatus.
func (s *auditTrailService) VerifyAuditTrail(ctx context.Context, actor domain.Actor, requestID string) (*domain.TrailVerification, error) {
	req, err := s.authorizedRequest(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	entries, err := s.auditLogRepo.ListAuditLogsByRequestID(ctx, requestID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit logs", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	result := VerifyChain(requestID, entries)
	result.StatusMatch = len(entries) > 0 && entries[0].ToStatus == req.Status

	if !result.Valid || !result.StatusMatch {
		s.LogWarn(ctx, "Audit trail verification failed",
			slog.String("request_id", requestID),
			slog.String("reason", result.Reason),
			slog.Bool("status_match", result.StatusMatch),
		)
	}
	return &result, nil
}

// VerifyChain checks entries given newest first, as the store returns them.
func VerifyChain(requestID string, entries []domain.AuditLogEntry) domain.TrailVerification {
	result := domain.TrailVerification{RequestID: requestID, Entries: len(entries), Valid: true}
	if len(entries) == 0 {
		result.Valid = false
		result.Reason = "no audit entries"
		return result
	}

	fail := func(e domain.AuditLogEntry, reason string) domain.TrailVerification {
		id := e.EntryID
		result.Valid = false
		result.BrokenAt = &id
		result.Reason = reason
		return result
	}

	previous := ""
	var prevTo domain.Status
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		first := i == len(entries)-1

		switch {
		case e.RequestID != requestID:
			return fail(e, "entry belongs to another request")
		case first && (e.Action != domain.ActionCreate || e.FromStatus != nil || e.ToStatus != domain.InitialStatus):
			return fail(e, "trail does not start with CREATE into "+string(domain.InitialStatus))
		case !first && (e.Action == domain.ActionCreate || e.FromStatus == nil):
			return fail(e, "CREATE entry after the first")
		case !first && *e.FromStatus != prevTo:
			return fail(e, fmt.Sprintf("fromStatus %s does not continue %s", *e.FromStatus, prevTo))
		}

		if want := domain.ComputeIntegrity(previous, e); e.Integrity != want {
			return fail(e, "integrity hash mismatch")
		}
		previous = e.Integrity
		prevTo = e.ToStatus
	}
	return result
}

func (s *auditTrailService) authorizedRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.Request, error) {
	if requestID == "" {
		return nil, fmt.Errorf("%w: request id is required", apperrors.ErrNotFound)
	}
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, domain.OpRead, req); err != nil {
		return nil, err
	}
	return req, nil
}
