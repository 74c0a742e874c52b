package domain

import "time"

// Operation is a workflow operation an actor can attempt on a request.
type Operation string

const (
	OpCreate  Operation = "create"
	OpEdit    Operation = "edit"
	OpSubmit  Operation = "submit"
	OpApprove Operation = "approve"
	OpReject  Operation = "reject"
	OpRead    Operation = "read"

	// Read-side operation classes gated by role only.
	OpReadAny     Operation = "read:any"
	OpListOwn     Operation = "list:own"
	OpListPending Operation = "list:pending"
	OpListAll     Operation = "list:all"
)

type transitionKey struct {
	from Status
	op   Operation
}

// transitions is the lifecycle graph. A missing key means the operation is not
// defined from that state. CREATE has no source state and is handled separately.
var transitions = map[transitionKey]Status{
	{StatusDraft, OpEdit}:        StatusDraft,
	{StatusDraft, OpSubmit}:      StatusSubmitted,
	{StatusSubmitted, OpApprove}: StatusApproved,
	{StatusSubmitted, OpReject}:  StatusRejected,
}

// auditActions maps each mutating operation to the action recorded in the audit trail.
var auditActions = map[Operation]AuditAction{
	OpCreate:  ActionCreate,
	OpEdit:    ActionUpdate,
	OpSubmit:  ActionSubmit,
	OpApprove: ActionApprove,
	OpReject:  ActionReject,
}

// InitialStatus is the status of every newly created request.
const InitialStatus = StatusDraft

// NextStatus looks up the state reached by applying op from current.
func NextStatus(current Status, op Operation) (Status, bool) {
	next, ok := transitions[transitionKey{from: current, op: op}]
	return next, ok
}

// AuditActionFor returns the audit action recorded for op.
func AuditActionFor(op Operation) (AuditAction, bool) {
	a, ok := auditActions[op]
	return a, ok
}

// Transition describes one state change applied as a single unit of work:
// the conditional update of the request and the matching audit append.
type Transition struct {
	RequestID string
	Operation Operation
	From      Status // Status the request must still hold at commit time
	To        Status
	Changes   RequestChanges
	Actor     Actor
	At        time.Time
}

// Action returns the audit action for the transition's operation.
func (t Transition) Action() AuditAction {
	a, _ := AuditActionFor(t.Operation)
	return a
}

// Apply computes the request after t and the audit entry recording it, given the
// persisted current row. It returns false when current no longer holds t.From.
// The entry's integrity is left for the store to chain.
func (t Transition) Apply(current Request) (Request, AuditLogEntry, bool) {
	if current.RequestID != t.RequestID || current.Status != t.From {
		return current, AuditLogEntry{}, false
	}

	next := t.Changes.Apply(current)
	next.Status = t.To
	next.LastUpdatedBy = t.Actor.ID
	next.Version = current.Version + 1
	next.LastUpdatedAt = t.At
	// updatedAt never moves backwards even if clocks do.
	if t.At.Before(current.LastUpdatedAt) {
		next.LastUpdatedAt = current.LastUpdatedAt
	}

	entry := AuditLogEntry{
		RequestID:   t.RequestID,
		Action:      t.Action(),
		FromStatus:  StatusPtr(current.Status),
		ToStatus:    next.Status,
		PerformedBy: t.Actor.ID,
		CreatedAt:   next.LastUpdatedAt,
	}
	return next, entry, true
}

// CreationEntry is the CREATE audit entry for a newly created request.
func CreationEntry(r Request) AuditLogEntry {
	return AuditLogEntry{
		RequestID:   r.RequestID,
		Action:      ActionCreate,
		ToStatus:    r.Status,
		PerformedBy: r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}
