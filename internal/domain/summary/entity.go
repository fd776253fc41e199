package summary

import "time"

// SummaryID identifier type
type SummaryID string

// Summary represents an AI-generated digest of a filtered error
// listing, stored for auditing and retrieval.
type Summary struct {
	ID        SummaryID `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ProjectID string    `json:"project_id"`
	Filters   string    `json:"filters,omitempty"` // encoded query of the summarized view
	Result    string    `json:"result"`            // JSON string from AI
	CreatedAt time.Time `json:"created_at"`
}
