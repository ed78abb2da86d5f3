package route

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// addTestEdge adds an edge between two fresh vertices with an explicit
// length/gain/loss, bypassing geom.LengthMeters's geodesic computation so
// scenario metrics (spec §8's "triangle of three edges, each 2km and
// 100m gain") are exact round numbers.
func addTestEdge(t *testing.T, g *netgraph.Graph, src, dst *netgraph.Vertex, lengthKM, gainM, lossM float64) *netgraph.Edge {
	t.Helper()
	line := geom.MakeLine([]geom.Point3{src.Pos, dst.Pos})
	e, err := g.AddEdge(src.ID, dst.ID, line, uuid.New())
	require.NoError(t, err)
	e.LengthKM = lengthKM
	e.GainM = gainM
	e.LossM = lossM
	return e
}

func pt(lng, lat float64) geom.Point3 { return geom.Point3{Lng: lng, Lat: lat} }

// buildTriangle constructs the end-to-end loop scenario from spec §8.4:
// three edges, each 2km/100m gain, forming a closed triangle.
func buildTriangle(t *testing.T) *netgraph.Graph {
	t.Helper()
	g := netgraph.NewGraph()
	a := g.AddVertex(pt(0, 0), netgraph.KindIntersection)
	b := g.AddVertex(pt(0.01, 0), netgraph.KindIntersection)
	c := g.AddVertex(pt(0.005, 0.01), netgraph.KindIntersection)
	addTestEdge(t, g, a, b, 2, 100, 0)
	addTestEdge(t, g, b, c, 2, 100, 0)
	addTestEdge(t, g, c, a, 2, 100, 0)
	return g
}

// buildChain constructs the end-to-end out-and-back scenario from spec
// §8.5: a linear chain totaling 4km one-way with 200m cumulative gain.
func buildChain(t *testing.T) *netgraph.Graph {
	t.Helper()
	g := netgraph.NewGraph()
	v0 := g.AddVertex(pt(0, 0), netgraph.KindEndpoint)
	v1 := g.AddVertex(pt(0.01, 0), netgraph.KindIntersection)
	v2 := g.AddVertex(pt(0.02, 0), netgraph.KindEndpoint)
	addTestEdge(t, g, v0, v1, 2, 100, 0)
	addTestEdge(t, g, v1, v2, 2, 100, 0)
	return g
}

func testL3Cfg() config.L3 {
	cfg := config.Default().L3
	cfg.MinDistanceBetweenRoutesM = 1
	cfg.MinSubnetworkSize = 2
	cfg.MaxSubnetworkSize = 1000
	return cfg
}

func TestGenerateLoopScenario(t *testing.T) {
	g := buildTriangle(t)
	pat := core.RoutePattern{Name: "loop6k", TargetDistanceKM: 6, TargetElevationGainM: 300, Shape: core.ShapeLoop, TolerancePercent: 20}

	gen := New(testL3Cfg(), nil, testLogger())
	recs, _, err := gen.Generate(context.Background(), g, []core.RoutePattern{pat})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.InDelta(t, 6.0, r.Metrics.DistanceKM, 1e-9)
	assert.InDelta(t, 300.0, r.Metrics.GainM, 1e-9)
	assert.Equal(t, 3, r.Metrics.TrailCount)
	assert.GreaterOrEqual(t, r.Similarity, 0.95)
}

func TestGenerateOutAndBackScenario(t *testing.T) {
	g := buildChain(t)
	pat := core.RoutePattern{Name: "oab8k", TargetDistanceKM: 8, TargetElevationGainM: 400, Shape: core.ShapeOutAndBack, TolerancePercent: 10}

	gen := New(testL3Cfg(), nil, testLogger())
	recs, _, err := gen.Generate(context.Background(), g, []core.RoutePattern{pat})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.InDelta(t, 8.0, r.Metrics.DistanceKM, 1e-9)
	assert.InDelta(t, 400.0, r.Metrics.GainM, 1e-9)
}

func TestGenerateDeterministicOrdering(t *testing.T) {
	g := buildTriangle(t)
	pat := core.RoutePattern{Name: "loop6k", TargetDistanceKM: 6, TargetElevationGainM: 300, Shape: core.ShapeLoop, TolerancePercent: 20}
	gen := New(testL3Cfg(), nil, testLogger())

	recs1, _, err := gen.Generate(context.Background(), g, []core.RoutePattern{pat})
	require.NoError(t, err)
	recs2, _, err := gen.Generate(context.Background(), g, []core.RoutePattern{pat})
	require.NoError(t, err)

	require.Len(t, recs1, len(recs2))
	for i := range recs1 {
		assert.Equal(t, recs1[i].Metrics.DistanceKM, recs2[i].Metrics.DistanceKM)
	}
}
