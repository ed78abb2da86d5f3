package core

import (
	"github.com/google/uuid"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// RoutePattern is a target shape for L3 search: how far, how much climb,
// what topology, and how much slack from the targets is acceptable
// (spec §3).
type RoutePattern struct {
	Name                 string
	TargetDistanceKM     float64
	TargetElevationGainM float64
	Shape                RouteShape
	TolerancePercent     float64
}

// Matches reports whether distanceKM/gainM fall within the pattern's
// tolerance band of its targets.
func (p RoutePattern) Matches(distanceKM, gainM float64) bool {
	return withinTolerance(distanceKM, p.TargetDistanceKM, p.TolerancePercent) &&
		withinTolerance(gainM, p.TargetElevationGainM, p.TolerancePercent)
}

func withinTolerance(actual, target, pct float64) bool {
	if target == 0 {
		return actual == 0
	}
	delta := actual - target
	if delta < 0 {
		delta = -delta
	}
	return delta/target*100.0 <= pct
}

// RouteMetrics is the aggregate profile of a RouteRecommendation's edge
// sequence.
type RouteMetrics struct {
	DistanceKM       float64
	GainM            float64
	LossM            float64
	TrailCount       int
	UniqueTrailCount int
	GainRateMPerKM   float64
	EstTimeMinutes   float64
	Difficulty       Difficulty
	ConnectivityScore float64
}

// RouteRecommendation is one scored, deduplicated candidate route (spec
// §3).
type RouteRecommendation struct {
	UUID        uuid.UUID
	Pattern     RoutePattern
	Edges       []netgraph.EdgeID
	Metrics     RouteMetrics
	Score       float64 // in [0,100]
	Similarity  float64 // in [0,1], closeness to the pattern's targets (1 = exact match)
	Geometry    geom.Line3
	Fingerprint string // request fingerprint for cross-pattern dedup
}

// NewRouteRecommendation validates the non-empty edge sequence invariant
// and assigns a fresh identity; callers fill Metrics/Score/Similarity/
// Geometry/Fingerprint once computed.
func NewRouteRecommendation(pattern RoutePattern, edges []netgraph.EdgeID) (*RouteRecommendation, error) {
	if len(edges) == 0 {
		return nil, ErrEmptyEdgeSequence
	}
	return &RouteRecommendation{
		UUID:    uuid.New(),
		Pattern: pattern,
		Edges:   edges,
	}, nil
}
