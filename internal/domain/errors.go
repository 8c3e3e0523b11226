package domain

import "errors"

// Error taxonomy surfaced by the engine. The API layer maps these with
// errors.Is onto HTTP status codes.
var (
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a habit that does not exist or is not owned by the caller.
	ErrNotFound = errors.New("habit not found")
	// ErrConflict indicates a deletion blocked by dependent log records.
	ErrConflict = errors.New("habit has dependent logs")
)
