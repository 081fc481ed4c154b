package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to
// specific HTTP status codes and error payloads.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
