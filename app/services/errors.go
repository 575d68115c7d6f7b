package services

import "errors"

// Sentinel errors recovered at the controller boundary and mapped to
// HTTP statuses. Anything else surfaces as a 500.
var (
	// ErrNotFound — no such resource (404).
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden — authenticated but not the owner or an admin (403).
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials — login failed (401).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken — registration with an existing email (400).
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError carries per-field messages for a 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// NewValidationError builds a ValidationError from field → message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
