package dto

import "time"

// TemplateResponse is returned when listing selectable templates.
type TemplateResponse struct {
	TemplateID string    `json:"template_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// TemplateUploadResponse acknowledges a stored custom template.
type TemplateUploadResponse struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
}
