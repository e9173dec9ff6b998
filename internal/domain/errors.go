// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed domain validation. Wrap it with
// the field-level detail: fmt.Errorf("content must not be empty: %w", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrUnavailable indicates an external collaborator (model provider, score
// bucket) could not be reached. Callers treat it the same as any other
// provider failure; it exists so adapters can be tested for the mapping.
var ErrUnavailable = errors.New("upstream unavailable")
