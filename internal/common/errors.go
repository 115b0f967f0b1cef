// Package common defines sentinel errors shared across the service layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed creation input, delivery date not in
	// the future). Surfaced to the caller immediately, no partial writes.
	ErrValidation = errors.New("validation error")

	// Auth errors (missing or mismatched sweep trigger secret).
	ErrUnauthorized = errors.New("unauthorized")

	// Generic internal failure exposed at the transport boundary.
	ErrInternal = errors.New("internal error")
)
