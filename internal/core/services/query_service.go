package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/dto"
)

type requestQueryService struct {
	BaseService
	queryRepo portsrepo.RequestQuerier
	guard     portssvc.AuthorizationGuardSvc
}

// NewRequestQueryService creates the read-only listing service.
func NewRequestQueryService(queryRepo portsrepo.RequestQuerier, guard portssvc.AuthorizationGuardSvc) portssvc.RequestQuerySvc {
	return &requestQueryService{
		queryRepo: queryRepo,
		guard:     guard,
	}
}

var _ portssvc.RequestQuerySvc = (*requestQueryService)(nil)

// ListMyRequests lists requests created by the actor.
func (s *requestQueryService) ListMyRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	if err := s.guard.AuthorizeRole(ctx, actor, domain.OpListOwn); err != nil {
		return nil, err
	}
	filter, err := params.Filter()
	if err != nil {
		return nil, err
	}
	filter.CreatedBy = actor.ID
	filter.AssignedApprover = ""
	return s.list(ctx, filter, params)
}

// MyDashboard counts the actor's own requests by status.
func (s *requestQueryService) MyDashboard(ctx context.Context, actor domain.Actor) (*dto.DashboardResponse, error) {
	if err := s.guard.AuthorizeRole(ctx, actor, domain.OpListOwn); err != nil {
		return nil, err
	}
	counts, err := s.queryRepo.CountRequestsByStatus(ctx, domain.RequestFilter{CreatedBy: actor.ID})
	if err != nil {
		s.LogError(ctx, err, "Failed to count requests by status")
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	resp := dto.ToDashboardResponse(counts)
	return &resp, nil
}

// ListPendingApprovals lists SUBMITTED requests assigned to the actor.
func (s *requestQueryService) ListPendingApprovals(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	if err := s.guard.AuthorizeRole(ctx, actor, domain.OpListPending); err != nil {
		return nil, err
	}
	filter, err := params.Filter()
	if err != nil {
		return nil, err
	}
	submitted := domain.StatusSubmitted
	filter.Status = &submitted
	filter.AssignedApprover = actor.ID
	filter.CreatedBy = ""
	return s.list(ctx, filter, params)
}

// ListAllRequests lists every request matching the filters.
func (s *requestQueryService) ListAllRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	if err := s.guard.AuthorizeRole(ctx, actor, domain.OpListAll); err != nil {
		return nil, err
	}
	filter, err := params.Filter()
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter, params)
}

func (s *requestQueryService) list(ctx context.Context, filter domain.RequestFilter, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	requests, nextToken, err := s.queryRepo.ListRequests(ctx, filter, params.PageLimit(), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list requests")
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	s.LogDebug(ctx, "Requests listed", slog.Int("count", len(requests)))
	return &dto.ListRequestsResponse{
		Requests:  dto.ToRequestResponses(requests),
		NextToken: nextToken,
	}, nil
}
