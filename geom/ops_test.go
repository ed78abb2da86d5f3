package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(coords ...[2]float64) Line3 {
	pts := make([]Point3, len(coords))
	for i, c := range coords {
		pts[i] = Point3{Lng: c[0], Lat: c[1]}
	}
	return Line3{Points: pts}
}

func TestNPointsAndEndpoints(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	assert.Equal(t, 3, NPoints(l))

	start, err := StartPoint(l)
	require.NoError(t, err)
	assert.Equal(t, 0.0, start.Lng)

	end, err := EndPoint(l)
	require.NoError(t, err)
	assert.Equal(t, 2.0, end.Lng)

	_, err = StartPoint(Line3{})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		name string
		l    Line3
		want bool
	}{
		{"too short", line([2]float64{0, 0}), false},
		{"repeated point", line([2]float64{0, 0}, [2]float64{0, 0}, [2]float64{1, 0}), false},
		{"simple", line([2]float64{0, 0}, [2]float64{1, 0}), true},
		{
			"self-crossing",
			line([2]float64{0, 0}, [2]float64{2, 2}, [2]float64{0, 2}, [2]float64{2, 0}),
			false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsValid(c.l))
		})
	}
}

func TestLengthMetersOfDegreeLine(t *testing.T) {
	// Roughly 1 degree of longitude at the equator is ~111.2km.
	l := line([2]float64{0, 0}, [2]float64{1, 0})
	got := LengthMeters(l)
	assert.InDelta(t, 111195.0, got, 2000)
}

func TestForce3DInterpolatesBetweenKnownElevations(t *testing.T) {
	l := Line3{Points: []Point3{
		{Lng: 0, Lat: 0, HasZ: true, Z: 0},
		{Lng: 1, Lat: 0},
		{Lng: 2, Lat: 0, HasZ: true, Z: 100},
	}}
	out := Force3D(l, -1)
	require.True(t, out.Points[1].HasZ)
	assert.InDelta(t, 50, out.Points[1].Z, 1)
}

func TestForce3DDefaultsWhenNoElevationKnown(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{1, 0})
	out := Force3D(l, 42)
	for _, p := range out.Points {
		assert.True(t, p.HasZ)
		assert.Equal(t, 42.0, p.Z)
	}
}

func TestIntersectionOfCrossingLines(t *testing.T) {
	a := line([2]float64{0, 0}, [2]float64{2, 0})
	b := line([2]float64{1, -1}, [2]float64{1, 1})
	pts := Intersection(a, b)
	require.Len(t, pts, 1)
	assert.InDelta(t, 1, pts[0].Lng, 1e-9)
	assert.InDelta(t, 0, pts[0].Lat, 1e-9)
}

func TestSplitFailsNearEndpoint(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{1, 0})
	_, _, err := Split(l, Point3{Lng: 0.0005, Lat: 0}, 0.01)
	assert.ErrorIs(t, err, ErrNotSplittable)
}

func TestSplitProducesOrderedChildren(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{2, 0})
	first, second, err := Split(l, Point3{Lng: 1, Lat: 0}, 0.001)
	require.NoError(t, err)
	fe, _ := EndPoint(first)
	ss, _ := StartPoint(second)
	assert.InDelta(t, 1, fe.Lng, 1e-9)
	assert.InDelta(t, 1, ss.Lng, 1e-9)

	totalLen := LengthMeters(first) + LengthMeters(second)
	assert.InDelta(t, LengthMeters(l), totalLen, LengthMeters(l)*1e-6+1e-6)
}

func TestSegmentizeCapsSpacing(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{1, 0})
	out := Segmentize(l, 20000) // ~20km max spacing over a ~111km segment
	require.GreaterOrEqual(t, NPoints(out), 6)
	for i := 0; i+1 < len(out.Points); i++ {
		seg := Line3{Points: out.Points[i : i+2]}
		assert.LessOrEqual(t, LengthMeters(seg), 20001.0)
	}
}

func TestLineLocateBounds(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{2, 0})
	assert.InDelta(t, 0, LineLocate(l, Point3{Lng: 0, Lat: 0}), 1e-9)
	assert.InDelta(t, 1, LineLocate(l, Point3{Lng: 2, Lat: 0}), 1e-9)
	assert.InDelta(t, 0.5, LineLocate(l, Point3{Lng: 1, Lat: 0}), 1e-6)
}

func TestDWithin(t *testing.T) {
	a := line([2]float64{0, 0}, [2]float64{1, 0})
	b := line([2]float64{0.5, 0.0001}, [2]float64{0.5, 0.01})
	assert.True(t, DWithin(a, b, 50))
	c := line([2]float64{0.5, 1}, [2]float64{0.5, 2})
	assert.False(t, DWithin(a, c, 50))
}

func TestSimplifyNoOpBelowMinPts(t *testing.T) {
	l := line([2]float64{0, 0}, [2]float64{0.5, 0.5}, [2]float64{1, 0})
	out := Simplify(l, 10, 10)
	assert.Equal(t, NPoints(l), NPoints(out))
}

func TestOverlapFractionOfCoincidentLines(t *testing.T) {
	a := line([2]float64{0, 0}, [2]float64{0.001, 0}, [2]float64{0.002, 0})
	b := line([2]float64{0, 0.00001}, [2]float64{0.002, 0.00001})
	assert.InDelta(t, 1.0, OverlapFraction(a, b, 10), 1e-9)
}

func TestOverlapFractionOfDisjointLines(t *testing.T) {
	a := line([2]float64{0, 0}, [2]float64{0.001, 0})
	b := line([2]float64{10, 10}, [2]float64{10.001, 10})
	assert.Equal(t, 0.0, OverlapFraction(a, b, 10))
}

func TestHausdorffMetersIsSymmetric(t *testing.T) {
	a := line([2]float64{0, 0}, [2]float64{0.01, 0})
	b := line([2]float64{0, 0.0001}, [2]float64{0.01, 0.0001})
	assert.InDelta(t, HausdorffMeters(a, b), HausdorffMeters(b, a), 1e-9)
	assert.Greater(t, HausdorffMeters(a, b), 0.0)
}
