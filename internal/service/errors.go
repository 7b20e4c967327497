package service

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Every state-machine violation is detected
// before any write and surfaces as one of these, wrapped with detail.
var (
	// ErrNotFound: candidate, request, group or post absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict: already friends, duplicate pending request,
	// last-owner leave.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput: missing required target, malformed filter values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable: the graph store could not be reached. Reads are
	// idempotent, so the caller may retry; the engine does not.
	ErrUnavailable = errors.New("unavailable")
)

// unavailable tags a store failure on a read path so handlers answer
// with a retryable unavailability instead of a generic server fault.
func unavailable(query string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, query, err)
}
