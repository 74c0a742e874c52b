package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/platform/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Outcome labels recorded per workflow operation.
const (
	outcomeSuccess           = "success"
	outcomeValidation        = "validation_error"
	outcomeNotFound          = "not_found"
	outcomeForbidden         = "forbidden"
	outcomeInvalidTransition = "invalid_transition"
	outcomeError             = "error"
)

// requestFields holds the validated form of the user-editable fields.
type requestFields struct {
	Title            string `validate:"required"`
	Type             string `validate:"required,oneof=LEAVE EXPENSE ACCESS"`
	AssignedApprover string `validate:"required"`
}

type workflowService struct {
	BaseService
	requestRepo portsrepo.RequestRepositoryFacade
	guard       portssvc.AuthorizationGuardSvc
	validate    *validator.Validate
	metrics     metrics.Recorder
	now         func() time.Time
	newID       func() string
}

// WorkflowOption is a function that configures a workflowService
type WorkflowOption func(*workflowService)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) WorkflowOption {
	return func(s *workflowService) {
		s.now = now
	}
}

// WithIDGenerator overrides the request id generator.
func WithIDGenerator(newID func() string) WorkflowOption {
	return func(s *workflowService) {
		s.newID = newID
	}
}

// WithWorkflowMetrics records operation outcomes into rec.
func WithWorkflowMetrics(rec metrics.Recorder) WorkflowOption {
	return func(s *workflowService) {
		s.metrics = rec
	}
}

// NewWorkflowService creates the workflow engine.
func NewWorkflowService(requestRepo portsrepo.RequestRepositoryFacade, guard portssvc.AuthorizationGuardSvc, options ...WorkflowOption) portssvc.WorkflowSvcFacade {
	s := &workflowService{
		requestRepo: requestRepo,
		guard:       guard,
		validate:    validator.New(),
		metrics:     metrics.Noop{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// timestamp is truncated to the precision every store can round-trip.
func (s *workflowService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// CreateRequest creates a DRAFT request owned by the actor.
func (s *workflowService) CreateRequest(ctx context.Context, actor domain.Actor, input domain.NewRequestInput) (*domain.WorkflowResult, error) {
	if err := s.guard.Authorize(ctx, actor, domain.OpCreate, nil); err != nil {
		s.record(domain.OpCreate, outcomeForbidden)
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.AssignedApprover = strings.TrimSpace(input.AssignedApprover)
	if err := s.validateFields(requestFields{
		Title:            input.Title,
		Type:             string(input.Type),
		AssignedApprover: input.AssignedApprover,
	}); err != nil {
		s.LogWarn(ctx, "Invalid create payload", slog.String("error", err.Error()))
		s.record(domain.OpCreate, outcomeValidation)
		return nil, err
	}

	now := s.timestamp()
	req := domain.Request{
		RequestID:        s.newID(),
		Title:            input.Title,
		Type:             input.Type,
		Description:      normalizeDescription(input.Description),
		Status:           domain.InitialStatus,
		AssignedApprover: input.AssignedApprover,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ID,
			Version:       1,
		},
	}

	entry, err := s.requestRepo.CreateRequest(ctx, req)
	if err != nil {
		s.LogError(ctx, err, "Failed to persist new request", slog.String("request_id", req.RequestID))
		s.record(domain.OpCreate, outcomeError)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.record(domain.OpCreate, outcomeSuccess)
	s.LogInfo(ctx, "Request created", slog.String("request_id", req.RequestID), slog.String("assigned_approver", req.AssignedApprover))
	return &domain.WorkflowResult{Request: req, Entry: *entry}, nil
}

// EditRequest partially updates a DRAFT request.
func (s *workflowService) EditRequest(ctx context.Context, actor domain.Actor, requestID string, changes domain.RequestChanges) (*domain.WorkflowResult, error) {
	changes, err := s.validateChanges(changes)
	if err != nil {
		s.LogWarn(ctx, "Invalid edit payload", slog.String("request_id", requestID), slog.String("error", err.Error()))
		s.record(domain.OpEdit, outcomeValidation)
		return nil, err
	}
	return s.transition(ctx, actor, requestID, domain.OpEdit, changes)
}

// SubmitRequest moves a DRAFT request to SUBMITTED.
func (s *workflowService) SubmitRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error) {
	return s.transition(ctx, actor, requestID, domain.OpSubmit, domain.RequestChanges{})
}

// ApproveRequest moves a SUBMITTED request to APPROVED.
func (s *workflowService) ApproveRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error) {
	return s.transition(ctx, actor, requestID, domain.OpApprove, domain.RequestChanges{})
}

// RejectRequest moves a SUBMITTED request to REJECTED.
func (s *workflowService) RejectRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error) {
	return s.transition(ctx, actor, requestID, domain.OpReject, domain.RequestChanges{})
}

// GetRequest returns a request the actor is allowed to read.
func (s *workflowService) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, domain.OpRead, req); err != nil {
		return nil, err
	}
	return req, nil
}

// transition runs one state change: load, authorize, validate the edge, then
// hand the conditional write to the store.
func (s *workflowService) transition(ctx context.Context, actor domain.Actor, requestID string, op domain.Operation, changes domain.RequestChanges) (*domain.WorkflowResult, error) {
	logAttrs := []any{slog.String("request_id", requestID), slog.String("operation", string(op))}

	current, err := s.load(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.record(op, outcomeNotFound)
		} else {
			s.record(op, outcomeError)
		}
		return nil, err
	}

	if err := s.guard.Authorize(ctx, actor, op, current); err != nil {
		s.record(op, outcomeForbidden)
		return nil, err
	}

	next, ok := domain.NextStatus(current.Status, op)
	if !ok {
		s.LogWarn(ctx, "Transition not defined from current status", append(logAttrs, slog.String("status", string(current.Status)))...)
		s.record(op, outcomeInvalidTransition)
		return nil, fmt.Errorf("%w: cannot %s a %s request", apperrors.ErrInvalidTransition, op, current.Status)
	}

	t := domain.Transition{
		RequestID: requestID,
		Operation: op,
		From:      current.Status,
		To:        next,
		Changes:   changes,
		Actor:     actor,
		At:        s.timestamp(),
	}
	updated, entry, err := s.requestRepo.ApplyTransition(ctx, t)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidTransition):
			// Another operation changed the status after it was read.
			s.LogWarn(ctx, "Transition lost race on status", append(logAttrs, slog.String("expected_status", string(current.Status)))...)
			s.record(op, outcomeInvalidTransition)
			return nil, err
		case errors.Is(err, apperrors.ErrNotFound):
			s.record(op, outcomeNotFound)
			return nil, err
		}
		s.LogError(ctx, err, "Failed to apply transition", logAttrs...)
		s.record(op, outcomeError)
		return nil, fmt.Errorf("failed to %s request: %w", op, err)
	}

	s.record(op, outcomeSuccess)
	s.LogInfo(ctx, "Transition applied", append(logAttrs,
		slog.String("from_status", string(t.From)),
		slog.String("to_status", string(updated.Status)),
	)...)
	return &domain.WorkflowResult{Request: *updated, Entry: *entry}, nil
}

func (s *workflowService) load(ctx context.Context, requestID string) (*domain.Request, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fmt.Errorf("%w: request id is required", apperrors.ErrNotFound)
	}
	req, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to load request", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return req, nil
}

// validateChanges trims and checks only the supplied fields.
func (s *workflowService) validateChanges(changes domain.RequestChanges) (domain.RequestChanges, error) {
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return changes, apperrors.Validationf("title must not be empty")
		}
		changes.Title = &title
	}
	if changes.Type != nil && !changes.Type.Valid() {
		return changes, apperrors.Validationf("unknown request type %q", *changes.Type)
	}
	if changes.Description != nil {
		desc := strings.TrimSpace(*changes.Description)
		changes.Description = &desc
	}
	return changes, nil
}

func (s *workflowService) validateFields(fields requestFields) error {
	err := s.validate.Struct(fields)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return apperrors.Validationf("%s is required", field)
		case "oneof":
			return apperrors.Validationf("%s must be one of %s", field, fe.Param())
		}
		return apperrors.Validationf("%s is invalid", field)
	}
	return apperrors.Validationf("%s", err.Error())
}

func (s *workflowService) record(op domain.Operation, outcome string) {
	s.metrics.WorkflowOperation(string(op), outcome)
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
