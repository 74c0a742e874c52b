package domain

// RequestType is the kind of approval being requested.
type RequestType string

const (
	TypeLeave   RequestType = "LEAVE"
	TypeExpense RequestType = "EXPENSE"
	TypeAccess  RequestType = "ACCESS"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	switch t {
	case TypeLeave, TypeExpense, TypeAccess:
		return true
	}
	return false
}

// Status is the lifecycle state of a request.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Statuses lists every lifecycle state in graph order.
var Statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no operation is defined from s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an approval request routed from its creator to an assigned approver.
type Request struct {
	RequestID        string      `json:"id"`
	Title            string      `json:"title"`
	Type             RequestType `json:"type"`
	Description      *string     `json:"description,omitempty"`
	Status           Status      `json:"status"`
	AssignedApprover string      `json:"assignedApprover"`
	AuditFields
}

// NewRequestInput is the field payload for CREATE.
type NewRequestInput struct {
	Title            string
	Type             RequestType
	Description      *string
	AssignedApprover string
}

// RequestChanges is the partial payload for EDIT. Nil fields keep their prior value.
type RequestChanges struct {
	Title       *string
	Type        *RequestType
	Description *string
}

// Apply returns a copy of r with the supplied fields overwritten.
func (c RequestChanges) Apply(r Request) Request {
	if c.Title != nil {
		r.Title = *c.Title
	}
	if c.Type != nil {
		r.Type = *c.Type
	}
	if c.Description != nil {
		// An empty description clears it.
		if *c.Description == "" {
			r.Description = nil
		} else {
			d := *c.Description
			r.Description = &d
		}
	}
	return r
}
