package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

func testCfg() config.L2 {
	return config.Default().L2
}

func mustTrail(t *testing.T, name string, pts ...[2]float64) *core.Trail {
	t.Helper()
	points := make([]geom.Point3, len(pts))
	for i, p := range pts {
		points[i] = geom.Point3{Lng: p[0], Lat: p[1]}
	}
	tr, err := core.NewTrail(name, "park", geom.Line3{Points: points})
	require.NoError(t, err)
	return tr
}

// TestAssembleTIntersection reproduces spec §8 scenario 1: A split into
// A1/A2 at (1,0), B split into B1/B2 at the same point. L2 should yield 5
// vertices and 4 edges, none self-looping.
func TestAssembleTIntersection(t *testing.T) {
	a1 := mustTrail(t, "A", [2]float64{0, 0}, [2]float64{1, 0})
	a2 := mustTrail(t, "A", [2]float64{1, 0}, [2]float64{2, 0})
	b1 := mustTrail(t, "B", [2]float64{1, -1}, [2]float64{1, 0})
	b2 := mustTrail(t, "B", [2]float64{1, 0}, [2]float64{1, 1})

	asm := New(testCfg())
	g, reports, err := asm.Assemble([]*core.Trail{a1, a2, b1, b2})
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	assert.Equal(t, 5, g.VertexCount())
	assert.Equal(t, 4, g.EdgeCount())
	for _, e := range g.Edges() {
		assert.NotEqual(t, e.Source, e.Target)
		assert.Equal(t, netgraph.EdgeFinal, e.State)
	}

	intersections := 0
	for _, v := range g.Vertices() {
		if v.Kind == netgraph.KindIntersection {
			intersections++
		}
	}
	assert.Equal(t, 1, intersections, "only (1,0) should be a true intersection")
}

// TestMergeDegree2ChainsDissolvesCompatibleVertex exercises spec §4.4.3:
// a degree-2 vertex between two same-surface, same-name-absent trails
// dissolves into one continuous edge.
func TestMergeDegree2ChainsDissolvesCompatibleVertex(t *testing.T) {
	left := mustTrail(t, "", [2]float64{0, 0}, [2]float64{1, 0})
	right := mustTrail(t, "", [2]float64{1, 0}, [2]float64{2, 0})

	asm := New(testCfg())
	g, _, err := asm.Assemble([]*core.Trail{left, right})
	require.NoError(t, err)

	assert.Equal(t, 2, g.VertexCount())
	require.Equal(t, 1, g.EdgeCount())
	e := g.Edges()[0]
	assert.InDelta(t, left.LengthKM+right.LengthKM, e.LengthKM, 1e-6)
}

// TestDeduplicateOverlapsDropsShorterDuplicate exercises spec §4.4.4:
// two edges between the same endpoint pair within spatial_tolerance_m
// collapse to the longer one.
func TestDeduplicateOverlapsDropsShorterDuplicate(t *testing.T) {
	cfg := testCfg()
	cfg.SpatialToleranceM = 5
	asm := New(cfg)

	longer := mustTrail(t, "ridge", [2]float64{0, 0}, [2]float64{0.01, 0})
	shorter := mustTrail(t, "ridge-dup", [2]float64{0, 0.00001}, [2]float64{0.00999, 0.00001})

	g, _, err := asm.Assemble([]*core.Trail{longer, shorter})
	require.NoError(t, err)
	require.Equal(t, 1, g.EdgeCount())
	assert.InDelta(t, longer.LengthKM, g.Edges()[0].LengthKM, 1e-6)
}

// TestBridgeComponentsConnectsNearbyComponents exercises spec §4.4.5: two
// otherwise-disconnected trails with endpoints inside
// edge_bridging_tolerance_m get a synthetic connector, reducing the
// component count without merging the originals' identity.
func TestBridgeComponentsConnectsNearbyComponents(t *testing.T) {
	cfg := testCfg()
	cfg.EdgeBridgingToleranceM = 50
	cfg.ShortConnectorMaxLengthM = 50
	asm := New(cfg)

	first := mustTrail(t, "a", [2]float64{0, 0}, [2]float64{0.001, 0})
	// ~22m away in longitude at the equator, within the 50m bridge tolerance.
	second := mustTrail(t, "b", [2]float64{0.0012, 0}, [2]float64{0.002, 0})

	g, reports, err := asm.Assemble([]*core.Trail{first, second})
	require.NoError(t, err)

	var bridgeRep *Report
	for _, r := range reports {
		if r.Stage == "bridge_components" {
			bridgeRep = r
		}
	}
	require.NotNil(t, bridgeRep)
	assert.Equal(t, 1, bridgeRep.Bridges)
	assert.Equal(t, 3, g.EdgeCount(), "two original edges plus one synthetic connector")
}
