package core

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shaydu/carthorse/geom"
)

// BBox is a trail or recommendation's planar bounding box in WGS84
// degrees, min < max on both axes.
type BBox struct {
	MinLng, MinLat float64
	MaxLng, MaxLat float64
}

// Valid reports whether the box is non-degenerate.
func (b BBox) Valid() bool {
	return b.MinLng < b.MaxLng && b.MinLat < b.MaxLat
}

func bboxFromEnvelope(e orb.Bound) BBox {
	return BBox{MinLng: e.Min[0], MinLat: e.Min[1], MaxLng: e.Max[0], MaxLat: e.Max[1]}
}

// ElevationStats summarizes a 3D polyline's elevation profile. Gain and
// Loss are cumulative positive/negative deltas along the line; Min/Avg/Max
// are the extremes and mean of the sampled elevations.
type ElevationStats struct {
	GainM float64
	LossM float64
	MinM  float64
	AvgM  float64
	MaxM  float64
}

// Valid reports whether the stats are internally consistent (spec §3:
// "min <= avg <= max", gain/loss non-negative).
func (e ElevationStats) Valid() bool {
	return e.GainM >= 0 && e.LossM >= 0 && e.MinM <= e.AvgM && e.AvgM <= e.MaxM
}

func elevationStatsFromLine(l geom.Line3) ElevationStats {
	var stats ElevationStats
	first := true
	var prevZ float64
	sum := 0.0
	n := 0
	for _, p := range l.Points {
		if !p.HasZ {
			continue
		}
		if first {
			stats.MinM, stats.MaxM = p.Z, p.Z
			prevZ = p.Z
			first = false
		} else {
			delta := p.Z - prevZ
			if delta > 0 {
				stats.GainM += delta
			} else {
				stats.LossM += -delta
			}
			if p.Z < stats.MinM {
				stats.MinM = p.Z
			}
			if p.Z > stats.MaxM {
				stats.MaxM = p.Z
			}
			prevZ = p.Z
		}
		sum += p.Z
		n++
	}
	if n > 0 {
		stats.AvgM = sum / float64(n)
	}
	return stats
}

// Trail is the conditioned-or-raw trail record owned by the staging
// workspace for the lifetime of one run (spec §3).
type Trail struct {
	UUID       uuid.UUID
	SourceID   string // optional upstream identifier, unique when present
	ParentUUID *uuid.UUID

	Name   string
	Region string

	Geometry  geom.Line3
	LengthKM  float64
	Elevation ElevationStats
	BBox      BBox

	Surface    Surface
	TrailType  TrailType
	Difficulty Difficulty
	Tags       TagBag
}

// NewTrail constructs a Trail from geometry, deriving length, elevation
// stats, and bbox the way the spec's invariant requires: "if geometry is
// set, bbox and length are recomputed."
func NewTrail(name, region string, geometry geom.Line3) (*Trail, error) {
	if geom.NPoints(geometry) < 2 {
		return nil, ErrEmptyGeometry
	}
	t := &Trail{
		UUID:   uuid.New(),
		Name:   name,
		Region: region,
	}
	if err := t.SetGeometry(geometry); err != nil {
		return nil, err
	}
	return t, nil
}

// SetGeometry replaces the trail's geometry and recomputes length,
// elevation stats, and bbox, per spec §3's recompute invariant.
func (t *Trail) SetGeometry(geometry geom.Line3) error {
	if geom.NPoints(geometry) < 2 {
		return ErrEmptyGeometry
	}
	length := geom.LengthMeters(geometry)
	if length <= 0 {
		return ErrNonPositiveLength
	}
	t.Geometry = geometry
	t.LengthKM = length / 1000.0
	t.BBox = bboxFromEnvelope(geom.Envelope(geometry))
	if geometry.Is3D() {
		t.Elevation = elevationStatsFromLine(geometry)
		if !t.Elevation.Valid() {
			return ErrInvalidElevation
		}
	}
	return nil
}

// Validate checks invariants not already enforced by SetGeometry: bbox
// shape and closed-set tag membership.
func (t *Trail) Validate() error {
	if !t.BBox.Valid() {
		return ErrInvalidBBox
	}
	if !t.Surface.Valid() {
		return ErrUnknownSurface
	}
	if !t.TrailType.Valid() {
		return ErrUnknownTrailType
	}
	if !t.Difficulty.Valid() {
		return ErrUnknownDifficulty
	}
	return nil
}

// IntersectionPoint is the L1-intermediate where >=2 trails meet or a
// trail ends (spec §3). It is never persisted past L1 conditioning.
type IntersectionPoint struct {
	Pos             geom.Point3
	ConnectedTrails []uuid.UUID
	Kind            IntersectionKind
}

// IntersectionKind classifies an IntersectionPoint.
type IntersectionKind int

const (
	PointIntersection IntersectionKind = iota
	PointEndpoint
)

func (k IntersectionKind) String() string {
	if k == PointIntersection {
		return "intersection"
	}
	return "endpoint"
}

// NewIntersectionPoint validates the >=2-connected-trails invariant for a
// true intersection; endpoints may have exactly one.
func NewIntersectionPoint(pos geom.Point3, trails []uuid.UUID, kind IntersectionKind) (*IntersectionPoint, error) {
	if kind == PointIntersection && len(trails) < 2 {
		return nil, ErrTooFewConnections
	}
	return &IntersectionPoint{Pos: pos, ConnectedTrails: trails, Kind: kind}, nil
}
