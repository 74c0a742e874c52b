package mapping

import (
	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/internal/models"
)

// ToModelAuditLog converts a domain AuditLogEntry to a model AuditLog
func ToModelAuditLog(d domain.AuditLogEntry) models.AuditLog {
	m := models.AuditLog{
		LogID:       d.EntryID,
		RequestID:   d.RequestID,
		Action:      string(d.Action),
		ToStatus:    models.RequestStatus(d.ToStatus),
		PerformedBy: d.PerformedBy,
		CreatedAt:   d.CreatedAt,
		Integrity:   d.Integrity,
	}
	if d.FromStatus != nil {
		from := models.RequestStatus(*d.FromStatus)
		m.FromStatus = &from
	}
	return m
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLogEntry
func ToDomainAuditLog(m models.AuditLog) domain.AuditLogEntry {
	d := domain.AuditLogEntry{
		EntryID:     m.LogID,
		RequestID:   m.RequestID,
		Action:      domain.AuditAction(m.Action),
		ToStatus:    domain.Status(m.ToStatus),
		PerformedBy: m.PerformedBy,
		CreatedAt:   m.CreatedAt,
		Integrity:   m.Integrity,
	}
	if m.FromStatus != nil {
		d.FromStatus = domain.StatusPtr(domain.Status(*m.FromStatus))
	}
	return d
}

// ToDomainAuditLogSlice converts a slice of model AuditLogs to domain entries
func ToDomainAuditLogSlice(ms []models.AuditLog) []domain.AuditLogEntry {
	out := make([]domain.AuditLogEntry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainAuditLog(m)
	}
	return out
}
