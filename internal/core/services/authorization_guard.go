package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/platform/metrics"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// roleModel is a plain (role, operation) allow-list.
const roleModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

// DefaultRolePolicies is the role gate: which operation classes each role may reach.
// ADMIN gets read:any but no approve/reject.
var DefaultRolePolicies = map[domain.Role][]domain.Operation{
	domain.RoleUser: {
		domain.OpCreate, domain.OpEdit, domain.OpSubmit, domain.OpRead, domain.OpListOwn,
	},
	domain.RoleApprover: {
		domain.OpCreate, domain.OpEdit, domain.OpSubmit, domain.OpRead, domain.OpListOwn,
		domain.OpApprove, domain.OpReject, domain.OpListPending,
	},
	domain.RoleAdmin: {
		domain.OpCreate, domain.OpEdit, domain.OpSubmit, domain.OpRead, domain.OpListOwn,
		domain.OpReadAny, domain.OpListAll,
	},
}

// ownership names the request field an actor must match for an operation.
type ownership int

const (
	ownerNone ownership = iota
	ownerCreator
	ownerApprover
	ownerParticipant // creator or assigned approver
)

var ownershipRules = map[domain.Operation]ownership{
	domain.OpCreate:  ownerCreator,
	domain.OpEdit:    ownerCreator,
	domain.OpSubmit:  ownerCreator,
	domain.OpApprove: ownerApprover,
	domain.OpReject:  ownerApprover,
	domain.OpRead:    ownerParticipant,
}

const (
	gateIdentity  = "identity"
	gateRole      = "role"
	gateOwnership = "ownership"
)

type authorizationGuard struct {
	BaseService
	enforcer *casbin.SyncedEnforcer
	metrics  metrics.Recorder
}

// GuardOption is a function that configures an authorizationGuard
type GuardOption func(*authorizationGuard)

// WithGuardMetrics records denials into rec.
func WithGuardMetrics(rec metrics.Recorder) GuardOption {
	return func(g *authorizationGuard) {
		g.metrics = rec
	}
}

// NewAuthorizationGuard builds the guard with the given role policies.
// A nil policies map uses DefaultRolePolicies.
func NewAuthorizationGuard(policies map[domain.Role][]domain.Operation, options ...GuardOption) (portssvc.AuthorizationGuardSvc, error) {
	m, err := model.NewModelFromString(roleModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load role model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize role enforcer: %w", err)
	}

	if policies == nil {
		policies = DefaultRolePolicies
	}
	for role, ops := range policies {
		for _, op := range ops {
			if _, err := enforcer.AddPolicy(string(role), string(op)); err != nil {
				return nil, fmt.Errorf("failed to add policy %s/%s: %w", role, op, err)
			}
		}
	}

	g := &authorizationGuard{
		enforcer: enforcer,
		metrics:  metrics.Noop{},
	}
	for _, option := range options {
		option(g)
	}
	return g, nil
}

var _ portssvc.AuthorizationGuardSvc = (*authorizationGuard)(nil)

// AuthorizeRole evaluates only the coarse role gate.
func (g *authorizationGuard) AuthorizeRole(ctx context.Context, actor domain.Actor, op domain.Operation) error {
	if actor.IsZero() {
		g.logDenial(ctx, actor, op, "", gateIdentity)
		return apperrors.ErrUnauthorized
	}
	allowed, err := g.roleAllows(actor.Role, op)
	if err != nil {
		g.LogError(ctx, err, "Role enforcement failed", slog.String("operation", string(op)))
		return fmt.Errorf("%w: role enforcement failed", apperrors.ErrInternal)
	}
	if !allowed {
		return g.deny(ctx, actor, op, "", gateRole)
	}
	return nil
}

// Authorize evaluates the role gate and then the ownership gate against request.
func (g *authorizationGuard) Authorize(ctx context.Context, actor domain.Actor, op domain.Operation, request *domain.Request) error {
	if err := g.AuthorizeRole(ctx, actor, op); err != nil {
		return err
	}

	rule := ownershipRules[op]
	if rule == ownerNone || op == domain.OpCreate {
		return nil
	}
	if request == nil {
		return g.deny(ctx, actor, op, "", gateOwnership)
	}

	if g.owns(actor, rule, request) {
		return nil
	}

	// Read access is broader than write access.
	if op == domain.OpRead {
		if allowed, err := g.roleAllows(actor.Role, domain.OpReadAny); err == nil && allowed {
			return nil
		}
	}
	return g.deny(ctx, actor, op, request.RequestID, gateOwnership)
}

func (g *authorizationGuard) roleAllows(role domain.Role, op domain.Operation) (bool, error) {
	return g.enforcer.Enforce(string(role), string(op))
}

func (g *authorizationGuard) owns(actor domain.Actor, rule ownership, request *domain.Request) bool {
	switch rule {
	case ownerCreator:
		return actor.ID == request.CreatedBy
	case ownerApprover:
		return actor.ID == request.AssignedApprover
	case ownerParticipant:
		return actor.ID == request.CreatedBy || actor.ID == request.AssignedApprover
	}
	return false
}

// deny logs which gate failed and returns the generic Forbidden error.
func (g *authorizationGuard) deny(ctx context.Context, actor domain.Actor, op domain.Operation, requestID, gate string) error {
	g.logDenial(ctx, actor, op, requestID, gate)
	return apperrors.ErrForbidden
}

func (g *authorizationGuard) logDenial(ctx context.Context, actor domain.Actor, op domain.Operation, requestID, gate string) {
	g.LogWarn(ctx, "Authorization denied",
		slog.String("gate", gate),
		slog.String("operation", string(op)),
		slog.String("actor_id", actor.ID),
		slog.String("actor_role", string(actor.Role)),
		slog.String("request_id", requestID),
	)
	g.metrics.GuardDenied(string(op), gate)
}
