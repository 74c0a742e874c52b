package services

import (
	"context"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// AuthorizationGuardSvc evaluates whether an actor may perform an operation.
// Both methods return apperrors.ErrForbidden on denial, whichever gate failed,
// and apperrors.ErrUnauthorized when the actor carries no identity.
type AuthorizationGuardSvc interface {
	// AuthorizeRole evaluates only the coarse role gate for an operation class.
	AuthorizeRole(ctx context.Context, actor domain.Actor, op domain.Operation) error

	// Authorize evaluates the role gate and the ownership/assignment gate against request.
	Authorize(ctx context.Context, actor domain.Actor, op domain.Operation, request *domain.Request) error
}
