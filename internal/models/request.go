package models

// RequestStatus is the persisted lifecycle state.
type RequestStatus string

// Request is the row stored in the requests table.
type Request struct {
	RequestID        string        `db:"request_id"`
	Title            string        `db:"title"`
	Type             string        `db:"request_type"`
	Description      *string       `db:"description"`
	Status           RequestStatus `db:"status"`
	AssignedApprover string        `db:"assigned_approver"`
	AuditFields
}
