package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatLine(lngs ...float64) geom.Line3 {
	pts := make([]geom.Point3, len(lngs))
	for i, lng := range lngs {
		pts[i] = geom.Point3{Lng: lng, Lat: 0}
	}
	return geom.Line3{Points: pts}
}

func TestNewTrailRejectsTooFewPoints(t *testing.T) {
	_, err := NewTrail("short", "region", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}}})
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestNewTrailRecomputesLengthAndBBox(t *testing.T) {
	trail, err := NewTrail("loop road", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	assert.Greater(t, trail.LengthKM, 0.0)
	assert.True(t, trail.BBox.Valid())
	assert.Equal(t, 0.0, trail.BBox.MinLng)
	assert.Equal(t, 1.0, trail.BBox.MaxLng)
}

func TestSetGeometryRejectsDegenerateLength(t *testing.T) {
	trail, err := NewTrail("t", "r", flatLine(0, 1))
	require.NoError(t, err)
	err = trail.SetGeometry(flatLine(0, 0))
	assert.ErrorIs(t, err, ErrNonPositiveLength)
}

func TestElevationStatsDerivedFrom3DGeometry(t *testing.T) {
	l := geom.Line3{Points: []geom.Point3{
		{Lng: 0, Lat: 0, HasZ: true, Z: 100},
		{Lng: 0.01, Lat: 0, HasZ: true, Z: 150},
		{Lng: 0.02, Lat: 0, HasZ: true, Z: 120},
	}}
	trail, err := NewTrail("climb", "park", l)
	require.NoError(t, err)
	assert.InDelta(t, 50, trail.Elevation.GainM, 1e-9)
	assert.InDelta(t, 30, trail.Elevation.LossM, 1e-9)
	assert.True(t, trail.Elevation.Valid())
}

func TestTrailValidateRejectsUnknownEnumValues(t *testing.T) {
	trail, err := NewTrail("t", "r", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	trail.Surface = Surface(99)
	assert.ErrorIs(t, trail.Validate(), ErrUnknownSurface)
}

func TestNewIntersectionPointRequiresTwoTrailsWhenIntersection(t *testing.T) {
	_, err := NewIntersectionPoint(geom.Point3{Lng: 0, Lat: 0}, []uuid.UUID{uuid.New()}, PointIntersection)
	assert.ErrorIs(t, err, ErrTooFewConnections)

	p, err := NewIntersectionPoint(geom.Point3{Lng: 0, Lat: 0}, []uuid.UUID{uuid.New()}, PointEndpoint)
	require.NoError(t, err)
	assert.Equal(t, PointEndpoint, p.Kind)
}

func TestRoutePatternMatchesWithinTolerance(t *testing.T) {
	p := RoutePattern{TargetDistanceKM: 10, TargetElevationGainM: 200, TolerancePercent: 10}
	assert.True(t, p.Matches(10.5, 195))
	assert.False(t, p.Matches(15, 195))
}

func TestNewRouteRecommendationRejectsEmptyEdges(t *testing.T) {
	_, err := NewRouteRecommendation(RoutePattern{}, nil)
	assert.ErrorIs(t, err, ErrEmptyEdgeSequence)

	rec, err := NewRouteRecommendation(RoutePattern{Shape: ShapeLoop}, []netgraph.EdgeID{1, 2})
	require.NoError(t, err)
	assert.Len(t, rec.Edges, 2)
	assert.NotEqual(t, uuid.Nil, rec.UUID)
}
