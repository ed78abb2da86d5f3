// Package backfill is the optional external producer of spec §6: given a
// bounding box and a filter set, return additional trails L1 re-enters
// through validation and dedup. Core logic never calls an Overpass
// endpoint directly — it depends on the Backfill interface so tests can
// supply a fake producer and the network in DOMAIN_STACK cases can supply
// the real OSMBackfill.
package backfill

import (
	"context"

	"github.com/shaydu/carthorse/core"
)

// Filters narrows an Overpass query the way spec §6 enumerates: trail
// types to include, surfaces to exclude, and request-shape limits.
type Filters struct {
	TrailTypes            []string // subset of {path, footway, track, bridleway, steps}
	ExcludeSurfaces       []string // subset of {paved, asphalt, concrete}
	TimeoutSeconds        int
	MaxTrailsPerRequest   int
}

// BBox is the minimal bounding-box shape Backfill needs; it mirrors
// core.BBox's fields without importing core's Trail-shaped validation.
type BBox struct {
	MinLng, MinLat, MaxLng, MaxLat float64
}

// Backfill is the read-only external collaborator spec §6 calls "Overpass
// backfill": fetch_trails(bbox, filters) -> [Trail].
type Backfill interface {
	FetchTrails(ctx context.Context, bbox BBox, filters Filters) ([]*core.Trail, error)
}
