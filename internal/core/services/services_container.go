package services

import (
	"fmt"

	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, rec metrics.Recorder) (*portssvc.ServiceContainer, error) {
	if rec == nil {
		rec = metrics.Noop{}
	}

	// The guard is shared so every operation goes through the same policy table.
	guard, err := NewAuthorizationGuard(nil, WithGuardMetrics(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization guard: %w", err)
	}

	return &portssvc.ServiceContainer{
		Guard:    guard,
		Workflow: NewWorkflowService(repos.RequestRepo, guard, WithWorkflowMetrics(rec)),
		Audit:    NewAuditTrailService(repos.RequestRepo, repos.AuditLogRepo, guard),
		Query:    NewRequestQueryService(repos.RequestRepo, guard),
	}, nil
}
