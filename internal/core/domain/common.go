package domain

import "time"

// AuditFields holds standard bookkeeping information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Actor ID of the creator, immutable
	LastUpdatedAt time.Time `json:"updatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
	Version       int64     `json:"version"` // Incremented on every mutation
}
