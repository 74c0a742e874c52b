package services_test

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock RequestRepository ---
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockRequestRepository) CreateRequest(ctx context.Context, request domain.Request) (*domain.AuditLogEntry, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditLogEntry), args.Error(1)
}

func (m *MockRequestRepository) ApplyTransition(ctx context.Context, t domain.Transition) (*domain.Request, *domain.AuditLogEntry, error) {
	args := m.Called(ctx, t)
	if fn, ok := args.Get(0).(func(context.Context, domain.Transition) (*domain.Request, *domain.AuditLogEntry, error)); ok {
		return fn(ctx, t)
	}
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Request), args.Get(1).(*domain.AuditLogEntry), args.Error(2)
}

func (m *MockRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.Request, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.Request), token, args.Error(2)
}

func (m *MockRequestRepository) CountRequestsByStatus(ctx context.Context, filter domain.RequestFilter) (domain.StatusCounts, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.StatusCounts), args.Error(1)
}

var _ portsrepo.RequestRepositoryFacade = (*MockRequestRepository)(nil)

// --- Mock AuditLogRepository ---
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) ListAuditLogsByRequestID(ctx context.Context, requestID string) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

var _ portsrepo.AuditLogReader = (*MockAuditLogRepository)(nil)

// --- Recorder capturing metric calls ---
type recordedOp struct {
	Operation string
	Outcome   string
}

type captureRecorder struct {
	ops     []recordedOp
	denials []recordedOp
}

func (r *captureRecorder) WorkflowOperation(operation, outcome string) {
	r.ops = append(r.ops, recordedOp{operation, outcome})
}

func (r *captureRecorder) GuardDenied(operation, gate string) {
	r.denials = append(r.denials, recordedOp{operation, gate})
}

func strPtr(s string) *string { return &s }
