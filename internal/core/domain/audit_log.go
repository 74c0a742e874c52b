package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	ActionCreate  AuditAction = "CREATE"
	ActionUpdate  AuditAction = "UPDATE"
	ActionSubmit  AuditAction = "SUBMIT"
	ActionApprove AuditAction = "APPROVE"
	ActionReject  AuditAction = "REJECT"
)

// AuditLogEntry is the immutable record of one successful mutation of a request.
type AuditLogEntry struct {
	EntryID     int64       `json:"id"` // Creation ordered
	RequestID   string      `json:"requestId"`
	Action      AuditAction `json:"action"`
	FromStatus  *Status     `json:"fromStatus"` // Nil only for CREATE
	ToStatus    Status      `json:"toStatus"`
	PerformedBy string      `json:"performedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	Integrity   string      `json:"integrity"`
}

type integrityInput struct {
	Previous    string      `json:"previous"`
	RequestID   string      `json:"request_id"`
	Action      AuditAction `json:"action"`
	FromStatus  *Status     `json:"from_status"`
	ToStatus    Status      `json:"to_status"`
	PerformedBy string      `json:"performed_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ComputeIntegrity hashes the entry's content chained to the integrity of the
// previous entry of the same request (empty for CREATE).
func ComputeIntegrity(previous string, e AuditLogEntry) string {
	in := integrityInput{
		Previous:    previous,
		RequestID:   e.RequestID,
		Action:      e.Action,
		FromStatus:  e.FromStatus,
		ToStatus:    e.ToStatus,
		PerformedBy: e.PerformedBy,
		CreatedAt:   e.CreatedAt.UTC(),
	}
	// Marshal of this struct cannot fail.
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// StatusPtr returns a pointer to s.
func StatusPtr(s Status) *Status {
	return &s
}
