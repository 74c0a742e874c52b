package mapping

import (
	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/internal/models"
)

// ToModelRequest converts a domain Request to a model Request
func ToModelRequest(d domain.Request) models.Request {
	return models.Request{
		RequestID:        d.RequestID,
		Title:            d.Title,
		Type:             string(d.Type),
		Description:      d.Description,
		Status:           models.RequestStatus(d.Status),
		AssignedApprover: d.AssignedApprover,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRequest converts a model Request to a domain Request
func ToDomainRequest(m models.Request) domain.Request {
	return domain.Request{
		RequestID:        m.RequestID,
		Title:            m.Title,
		Type:             domain.RequestType(m.Type),
		Description:      m.Description,
		Status:           domain.Status(m.Status),
		AssignedApprover: m.AssignedApprover,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRequestSlice converts a slice of model Requests to domain Requests
func ToDomainRequestSlice(ms []models.Request) []domain.Request {
	out := make([]domain.Request, len(ms))
	for i, m := range ms {
		out[i] = ToDomainRequest(m)
	}
	return out
}
