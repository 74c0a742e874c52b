package repositories

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// RequestReader defines read operations for request data
type RequestReader interface {
	// FindRequestByID retrieves a request by its ID. Returns apperrors.ErrNotFound if absent.
	FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error)
}

// RequestWorkflowWriter defines the only write paths for requests. Each call is one
// atomic unit of work: the request write and its audit entry are committed together
// or not at all.
type RequestWorkflowWriter interface {
	// CreateRequest inserts a new DRAFT request together with its CREATE audit entry.
	CreateRequest(ctx context.Context, request domain.Request) (*domain.AuditLogEntry, error)

	// ApplyTransition updates the request only if its persisted status still equals t.From,
	// then appends the matching audit entry. Returns apperrors.ErrInvalidTransition when the
	// status no longer matches and apperrors.ErrNotFound when the request does not exist.
	ApplyTransition(ctx context.Context, t domain.Transition) (*domain.Request, *domain.AuditLogEntry, error)
}

// RequestQuerier defines read-only projections used by listings and dashboards.
type RequestQuerier interface {
	// ListRequests returns a page of requests matching filter, newest first, and a token for the next page.
	ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.Request, *string, error)

	// CountRequestsByStatus groups matching requests by status.
	CountRequestsByStatus(ctx context.Context, filter domain.RequestFilter) (domain.StatusCounts, error)
}

// RequestRepositoryFacade combines all request-related repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWorkflowWriter
	RequestQuerier
}
