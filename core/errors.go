package core

import "errors"

// Sentinel errors for domain-entity construction and mutation, each
// wrapping a carterr.Kind at the call site rather than here (package core
// has no carterr import: entities are pure data, the pipeline packages
// that build them attach stage/kind context).
var (
	ErrEmptyGeometry      = errors.New("core: geometry must have at least 2 points")
	ErrNonPositiveLength  = errors.New("core: length_km must be > 0")
	ErrInvalidElevation   = errors.New("core: elevation stats inconsistent with geometry")
	ErrInvalidBBox        = errors.New("core: bbox min must be < max")
	ErrUnknownSurface     = errors.New("core: surface not in closed set")
	ErrUnknownTrailType   = errors.New("core: trail type not in closed set")
	ErrUnknownDifficulty  = errors.New("core: difficulty not in closed set")
	ErrUnknownRouteShape  = errors.New("core: route shape not in closed set")
	ErrTooFewConnections  = errors.New("core: intersection point needs >= 2 connected trails")
	ErrEmptyEdgeSequence  = errors.New("core: route recommendation needs >= 1 edge")
)
