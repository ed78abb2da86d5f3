package store

import "errors"

var (
	// ErrFrozen is returned by any mutator once Freeze has been called,
	// except for the L2/L3-derived tables (vertices, edges,
	// recommendations) spec §4.2 explicitly still allows.
	ErrFrozen = errors.New("store: workspace is frozen")

	// ErrAlreadyFrozen is returned by Freeze when called twice.
	ErrAlreadyFrozen = errors.New("store: workspace already frozen")

	// ErrNoSnapshot is returned by Rollback when there is no open
	// snapshot to roll back to.
	ErrNoSnapshot = errors.New("store: no open snapshot")
)

// ValidationFailedError reports why a batch member failed §3 validation.
type ValidationFailedError struct {
	Field  string
	Reason string
}

func (e *ValidationFailedError) Error() string {
	return "store: validation failed: " + e.Field + ": " + e.Reason
}

// ConflictError reports a duplicate identity within a batch or against
// the existing table.
type ConflictError struct {
	UUID string
}

func (e *ConflictError) Error() string {
	return "store: conflict: duplicate uuid " + e.UUID
}
