package dto

import "time"

// AssignERPCodeRequest body de PATCH /api/prestadores/:id/sci-unico.
type AssignERPCodeRequest struct {
	SciUnico string `json:"sciUnico" validate:"required,sciunico"`
}

// ProviderResponse prestador en respuestas.
type ProviderResponse struct {
	ID         string     `json:"id"`
	SID        string     `json:"sid"`
	SciUnico   string     `json:"sciUnico,omitempty"`
	Name       string     `json:"nome"`
	Kind       string     `json:"tipo,omitempty"`
	Document   string     `json:"documento,omitempty"`
	Email      string     `json:"email,omitempty"`
	Status     string     `json:"status"`
	ExportedAt *time.Time `json:"dataExportacao,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
