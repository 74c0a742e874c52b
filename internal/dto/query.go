package dto

import (
	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListRequestsParams defines query parameters for request listings.
// CreatedBy and AssignedApprover are only honoured by the admin listing.
type ListRequestsParams struct {
	Status           string  `form:"status"`
	Type             string  `form:"type"`
	CreatedBy        string  `form:"createdBy"`
	AssignedApprover string  `form:"assignedApprover"`
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
}

// PageLimit clamps Limit into [1, MaxPageLimit].
func (p ListRequestsParams) PageLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageLimit
	case p.Limit > MaxPageLimit:
		return MaxPageLimit
	}
	return p.Limit
}

// Filter parses the status and type filters. Unknown values are a validation error.
func (p ListRequestsParams) Filter() (domain.RequestFilter, error) {
	var f domain.RequestFilter
	if p.Status != "" {
		s := domain.Status(p.Status)
		if !s.Valid() {
			return f, apperrors.Validationf("unknown status %q", p.Status)
		}
		f.Status = &s
	}
	if p.Type != "" {
		t := domain.RequestType(p.Type)
		if !t.Valid() {
			return f, apperrors.Validationf("unknown request type %q", p.Type)
		}
		f.Type = &t
	}
	f.CreatedBy = p.CreatedBy
	f.AssignedApprover = p.AssignedApprover
	return f, nil
}

// ListRequestsResponse wraps a page of requests.
type ListRequestsResponse struct {
	Requests  []RequestResponse `json:"requests"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// DashboardResponse summarises the actor's own requests by status.
type DashboardResponse struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Submitted int `json:"submitted"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
}

// ToDashboardResponse converts domain.StatusCounts to DTO.
func ToDashboardResponse(c domain.StatusCounts) DashboardResponse {
	return DashboardResponse{
		Total:     c.Total(),
		Draft:     c[domain.StatusDraft],
		Submitted: c[domain.StatusSubmitted],
		Approved:  c[domain.StatusApproved],
		Rejected:  c[domain.StatusRejected],
	}
}
