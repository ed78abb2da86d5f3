// Package carterr defines the closed error-kind taxonomy shared by every
// pipeline stage (geometry kernel, staging workspace, L1/L2/L3) plus the
// CarthorseError type that carries a kind alongside the affected stage and
// record list.
//
// Error policy mirrors the teacher's builder package: sentinels are plain
// package-level errors checked with errors.Is; CarthorseError wraps an
// inner error with %w so both the sentinel and the kind survive unwrapping.
package carterr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds from spec §7. Do not add values
// without updating every stage's error-handling switch.
type Kind int

const (
	ConfigInvalid Kind = iota
	ValidationFailed
	GeometryInvalid
	DegenerateGeometry
	DimensionMismatch
	Conflict
	DanglingEndpoint
	GraphInconsistent
	SubnetworkTooLarge
	SearchTimeout
	Cancelled
	ScorerUnavailable
	BackfillUnavailable
	ExporterFailed
	Internal
)

// String renders the kind the way a one-line failure report names it.
func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "ConfigInvalid"
	case ValidationFailed:
		return "ValidationFailed"
	case GeometryInvalid:
		return "GeometryInvalid"
	case DegenerateGeometry:
		return "DegenerateGeometry"
	case DimensionMismatch:
		return "DimensionMismatch"
	case Conflict:
		return "Conflict"
	case DanglingEndpoint:
		return "DanglingEndpoint"
	case GraphInconsistent:
		return "GraphInconsistent"
	case SubnetworkTooLarge:
		return "SubnetworkTooLarge"
	case SearchTimeout:
		return "SearchTimeout"
	case Cancelled:
		return "Cancelled"
	case ScorerUnavailable:
		return "ScorerUnavailable"
	case BackfillUnavailable:
		return "BackfillUnavailable"
	case ExporterFailed:
		return "ExporterFailed"
	default:
		return "Internal"
	}
}

// CarthorseError is the structured error surfaced to the pipeline
// controller: a kind, the stage that raised it, the records it affected
// (uuids, vertex/edge ids — caller-defined strings), and the wrapped cause.
type CarthorseError struct {
	Kind     Kind
	Stage    string
	Affected []string
	Err      error
}

func (e *CarthorseError) Error() string {
	if len(e.Affected) == 0 {
		return fmt.Sprintf("%s[%s]: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %v (affected=%v)", e.Stage, e.Kind, e.Err, e.Affected)
}

func (e *CarthorseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, carterr.ConfigInvalid-as-error) style matching
// work against a bare Kind wrapped via New, without requiring callers to
// reach into the struct.
func (e *CarthorseError) Is(target error) bool {
	var other *CarthorseError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds a CarthorseError, wrapping cause with %w so errors.Is/As on
// the inner sentinel (e.g. geom.ErrDegenerateGeometry) keeps working.
func New(kind Kind, stage string, affected []string, cause error) *CarthorseError {
	return &CarthorseError{Kind: kind, Stage: stage, Affected: affected, Err: cause}
}

// Fatal reports whether a kind aborts the run per spec §7 (GraphInconsistent,
// ConfigInvalid are stage-fatal; everything else is counted/logged or a
// normal termination signal).
func (k Kind) Fatal() bool {
	return k == GraphInconsistent || k == ConfigInvalid
}
