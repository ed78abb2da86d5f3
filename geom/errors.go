package geom

import "errors"

// Sentinel errors for the geometry kernel. Callers branch with errors.Is;
// carterr.New wraps these with a Kind when surfacing to a pipeline stage.
var (
	// ErrInvalidGeometry indicates a line fails IsValid (repeated points or
	// self-intersection after snapping).
	ErrInvalidGeometry = errors.New("geom: invalid geometry")

	// ErrDegenerateGeometry indicates a zero-length line or a split/segmentize
	// result that collapsed to fewer than two distinct points.
	ErrDegenerateGeometry = errors.New("geom: degenerate geometry")

	// ErrDimensionMismatch indicates an operation received lines that mix 2D
	// and 3D expectations in a way the operation cannot reconcile.
	ErrDimensionMismatch = errors.New("geom: dimension mismatch")

	// ErrNotSplittable indicates the requested split point projects within
	// endpoint_epsilon of one of the line's endpoints.
	ErrNotSplittable = errors.New("geom: split point too close to an endpoint")
)
