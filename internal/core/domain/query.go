package domain

// RequestFilter narrows read-only listings. Empty fields do not filter.
type RequestFilter struct {
	CreatedBy        string
	AssignedApprover string
	Status           *Status
	Type             *RequestType
}

// StatusCounts is the number of requests per status.
type StatusCounts map[Status]int

// Total returns the sum over all statuses.
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// WorkflowResult is the outcome of one successful workflow operation.
type WorkflowResult struct {
	Request Request
	Entry   AuditLogEntry
}

// TrailVerification reports whether a request's audit trail is intact.
type TrailVerification struct {
	RequestID   string `json:"requestId"`
	Entries     int    `json:"entries"`
	Valid       bool   `json:"valid"`
	BrokenAt    *int64 `json:"brokenAt,omitempty"` // First entry that failed verification
	Reason      string `json:"reason,omitempty"`
	StatusMatch bool   `json:"statusMatch"` // Last toStatus equals the request's current status
}
