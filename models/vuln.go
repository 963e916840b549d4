package models

import "time"

// Vuln is a single tagged finding belonging to exactly one project.
type Vuln struct {
	ID          int64     `json:"id"`
	ProjectID   string    `json:"project_id"`
	PageURL     string    `json:"page_url"`
	Selector    string    `json:"selector"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Steps       string    `json:"steps"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	Rank        *float64  `json:"rank,omitempty"` // Only populated for search results
}

// VulnInput carries the mutable fields for create and update. Updates
// replace all of these wholesale; there is no partial patch.
// type, severity and status are open vocabularies: required non-empty,
// with no fixed value set enforced server-side.
type VulnInput struct {
	PageURL     string `json:"page_url" binding:"required"`
	Selector    string `json:"selector" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Severity    string `json:"severity" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
	Steps       string `json:"steps"`
	Payload     string `json:"payload"`
}

// VulnQueryParams are the optional list filters. All exact-match
// filters AND together; Search switches to full-text search over
// description and steps, where Limit/Offset apply.
type VulnQueryParams struct {
	PageURL   string `form:"page_url"`
	Type      string `form:"type"`
	Severity  string `form:"severity"`
	Status    string `form:"status"`
	StartTime string `form:"start_time"`
	EndTime   string `form:"end_time"`
	Search    string `form:"search"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// VulnsResponse is the list/search response format.
type VulnsResponse struct {
	Vulns []Vuln `json:"vulns"`
	Total int    `json:"total"`
}
