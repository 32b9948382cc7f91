package handler

import "github.com/vetri-dj/ops-api/internal/core/domain"

// errorResponse documents the envelope rendered by the central error handler
// for every 4xx/5xx response.
type errorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
