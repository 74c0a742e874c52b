package models

import "time"

// AuditLog is the row stored in the append-only audit_logs table.
type AuditLog struct {
	LogID       int64          `db:"log_id"` // bigserial / autoincrement
	RequestID   string         `db:"request_id"`
	Action      string         `db:"action"`
	FromStatus  *RequestStatus `db:"from_status"` // NULL only for CREATE
	ToStatus    RequestStatus  `db:"to_status"`
	PerformedBy string         `db:"performed_by"`
	CreatedAt   time.Time      `db:"created_at"`
	Integrity   string         `db:"integrity"`
}
