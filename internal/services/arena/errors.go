package arena

import "errors"

// Error taxonomy surfaced to callers. Engine errors wrap exactly one of these,
// usually together with the repo sentinel that caused it.
var (
	ErrValidation   = errors.New("validation error")
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
