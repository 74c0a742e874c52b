package dto

import (
	"time"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// AuditLogResponse defines data returned for one audit entry.
type AuditLogResponse struct {
	EntryID     int64     `json:"id"`
	RequestID   string    `json:"requestId"`
	Action      string    `json:"action"`
	FromStatus  *string   `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	PerformedBy string    `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	Integrity   string    `json:"integrity"`
}

// ToAuditLogResponse converts domain.AuditLogEntry to DTO.
func ToAuditLogResponse(e *domain.AuditLogEntry) AuditLogResponse {
	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}
	return AuditLogResponse{
		EntryID:     e.EntryID,
		RequestID:   e.RequestID,
		Action:      string(e.Action),
		FromStatus:  from,
		ToStatus:    string(e.ToStatus),
		PerformedBy: e.PerformedBy,
		CreatedAt:   e.CreatedAt,
		Integrity:   e.Integrity,
	}
}

// ListAuditLogsResponse wraps a request's audit trail, newest first.
type ListAuditLogsResponse struct {
	Logs []AuditLogResponse `json:"logs"`
}

// ToListAuditLogsResponse converts a slice of domain.AuditLogEntry to DTO.
func ToListAuditLogsResponse(entries []domain.AuditLogEntry) ListAuditLogsResponse {
	list := make([]AuditLogResponse, len(entries))
	for i := range entries {
		list[i] = ToAuditLogResponse(&entries[i])
	}
	return ListAuditLogsResponse{Logs: list}
}
