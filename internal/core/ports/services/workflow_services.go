package services

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// RequestWorkflowSvc defines the state-changing operations of the request lifecycle.
// Every successful call appends exactly one audit entry; failed calls append none.
type RequestWorkflowSvc interface {
	// CreateRequest creates a DRAFT request owned by the actor.
	CreateRequest(ctx context.Context, actor domain.Actor, input domain.NewRequestInput) (*domain.WorkflowResult, error)

	// EditRequest partially updates a DRAFT request. Only the creator may edit.
	EditRequest(ctx context.Context, actor domain.Actor, requestID string, changes domain.RequestChanges) (*domain.WorkflowResult, error)

	// SubmitRequest moves a DRAFT request to SUBMITTED. Only the creator may submit.
	SubmitRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error)

	// ApproveRequest moves a SUBMITTED request to APPROVED. Only the assigned approver may approve.
	ApproveRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error)

	// RejectRequest moves a SUBMITTED request to REJECTED. Only the assigned approver may reject.
	RejectRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.WorkflowResult, error)
}

// RequestReaderSvc defines read access to a single request.
type RequestReaderSvc interface {
	// GetRequest returns the request if the actor is its creator, its approver, or an ADMIN.
	GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.Request, error)
}

// WorkflowSvcFacade combines all workflow-related service interfaces
type WorkflowSvcFacade interface {
	RequestWorkflowSvc
	RequestReaderSvc
}
