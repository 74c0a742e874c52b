package services

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/internal/dto"
)

// RequestQuerySvc provides read-only listings over current persisted state.
type RequestQuerySvc interface {
	// ListMyRequests lists requests created by the actor.
	ListMyRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error)

	// MyDashboard counts the actor's own requests by status.
	MyDashboard(ctx context.Context, actor domain.Actor) (*dto.DashboardResponse, error)

	// ListPendingApprovals lists SUBMITTED requests assigned to the actor. Requires role APPROVER.
	ListPendingApprovals(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error)

	// ListAllRequests lists every request matching the filters. Requires role ADMIN.
	ListAllRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error)
}
