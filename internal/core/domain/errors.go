package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthenticationRequired   = errors.New("authentication required")
	ErrAuthorizationDenied      = errors.New("access forbidden")
	ErrPasswordRotationRequired = errors.New("password rotation required")
	ErrCredentialMismatch       = errors.New("invalid credentials")
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("version conflict")
	ErrAlreadyExists            = errors.New("already exists")
	ErrUpstreamUnavailable      = errors.New("upstream unavailable")
	ErrValidation               = errors.New("validation failed")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail for form display. It matches
// ErrValidation under errors.Is, and also any wrapped cause.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// InvalidField is shorthand for a single-field ValidationError.
func InvalidField(field, message string) *ValidationError {
	return NewValidationError(FieldError{Field: field, Message: message})
}

// Because attaches an underlying cause, e.g. ErrCredentialMismatch.
func (e *ValidationError) Because(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// NotFoundError names the entity kind that could not be found.
type NotFoundError struct {
	Entity EntityKind
	ID     string
}

// NotFound returns an error matching ErrNotFound for the given entity.
func NotFound(entity EntityKind, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", strings.ToLower(string(e.Entity)))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
