package dto

import (
	"time"

	"github.com/SscSPs/flowgate/internal/core/domain"
)

// --- Request DTOs ---

// CreateRequestRequest defines data for creating a new approval request.
type CreateRequestRequest struct {
	Title            string  `json:"title" binding:"required"`
	Type             string  `json:"type" binding:"required,oneof=LEAVE EXPENSE ACCESS"`
	Description      *string `json:"description"`
	AssignedApprover string  `json:"assignedApprover" binding:"required"`
}

// ToNewRequestInput converts the DTO into the workflow payload.
func (r CreateRequestRequest) ToNewRequestInput() domain.NewRequestInput {
	return domain.NewRequestInput{
		Title:            r.Title,
		Type:             domain.RequestType(r.Type),
		Description:      r.Description,
		AssignedApprover: r.AssignedApprover,
	}
}

// UpdateRequestRequest defines data for editing a DRAFT request. Omitted fields keep their value.
type UpdateRequestRequest struct {
	Title       *string `json:"title"`
	Type        *string `json:"type" binding:"omitempty,oneof=LEAVE EXPENSE ACCESS"`
	Description *string `json:"description"`
}

// ToRequestChanges converts the DTO into the partial workflow payload.
func (r UpdateRequestRequest) ToRequestChanges() domain.RequestChanges {
	changes := domain.RequestChanges{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Type != nil {
		t := domain.RequestType(*r.Type)
		changes.Type = &t
	}
	return changes
}

// RequestResponse defines data returned for a request.
type RequestResponse struct {
	RequestID        string    `json:"id"`
	Title            string    `json:"title"`
	Type             string    `json:"type"`
	Description      *string   `json:"description,omitempty"`
	Status           string    `json:"status"`
	CreatedBy        string    `json:"createdBy"`
	AssignedApprover string    `json:"assignedApprover"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	LastUpdatedBy    string    `json:"lastUpdatedBy"`
	Version          int64     `json:"version"`
}

// ToRequestResponse converts domain.Request to DTO.
func ToRequestResponse(r *domain.Request) RequestResponse {
	return RequestResponse{
		RequestID:        r.RequestID,
		Title:            r.Title,
		Type:             string(r.Type),
		Description:      r.Description,
		Status:           string(r.Status),
		CreatedBy:        r.CreatedBy,
		AssignedApprover: r.AssignedApprover,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.LastUpdatedAt,
		LastUpdatedBy:    r.LastUpdatedBy,
		Version:          r.Version,
	}
}

// ToRequestResponses converts a slice of domain.Request to DTOs.
func ToRequestResponses(rs []domain.Request) []RequestResponse {
	list := make([]RequestResponse, len(rs))
	for i := range rs {
		list[i] = ToRequestResponse(&rs[i])
	}
	return list
}
