package models

import "time"

// Project is a tenant-scoped namespace. Each project is authenticated
// by a secret key issued once at creation; only the salted hash of the
// key is ever stored. All vulns belong to exactly one project.
type Project struct {
	ID         string    `json:"project_id"`
	Name       string    `json:"project_name"`
	BaseURL    string    `json:"base_url"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateProjectRequest is the payload for creating a new project.
type CreateProjectRequest struct {
	Name    string `json:"project_name" binding:"required,max=255"`
	BaseURL string `json:"base_url"`
}

// ResolveProjectRequest recovers project info for a caller who holds
// only the key.
type ResolveProjectRequest struct {
	Key string `json:"project_key" binding:"required"`
}

// ProjectResponse is the create/resolve payload. These two endpoints
// are the only places a plaintext key ever appears in a response.
type ProjectResponse struct {
	ID      string `json:"project_id"`
	Name    string `json:"project_name"`
	BaseURL string `json:"base_url"`
	Key     string `json:"project_key"`
}
