package domain

import "errors"

// Error taxonomy. Services wrap these sentinels with context; handlers map
// them to HTTP status codes exactly once at the boundary.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)
