package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/elevation"
	"github.com/shaydu/carthorse/geom"
)

func testCfg() config.L1 {
	c := config.Default().L1
	return c
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

func TestValidateAndCleanDropsShortTrails(t *testing.T) {
	c := New(testCfg(), elevation.NullProvider{})
	short := mustTrail(t, "tiny", [2]float64{0, 0}, [2]float64{0.00001, 0})
	out, rep := c.ValidateAndClean([]*core.Trail{short})
	assert.Empty(t, out)
	assert.Len(t, rep.Dropped, 1)
}

func TestValidateAndCleanKeepsGoodTrail(t *testing.T) {
	c := New(testCfg(), elevation.NullProvider{})
	good := mustTrail(t, "ridge", [2]float64{0, 0}, [2]float64{0.01, 0.01})
	out, rep := c.ValidateAndClean([]*core.Trail{good})
	require.Len(t, out, 1)
	assert.Empty(t, rep.Dropped)
}

func TestDeduplicateKeepsLongerOfOverlappingTrails(t *testing.T) {
	c := New(testCfg(), elevation.NullProvider{})
	a := mustTrail(t, "a", [2]float64{0, 0}, [2]float64{0.01, 0})
	b := mustTrail(t, "b", [2]float64{0, 0.0000001}, [2]float64{0.02, 0.0000001})
	out, rep := c.Deduplicate([]*core.Trail{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Name)
	assert.Equal(t, 1, rep.Merged)
}

func TestGapFixBridgesNearbyEndpoints(t *testing.T) {
	cfg := testCfg()
	cfg.MinGapM = 1
	cfg.MaxGapM = 20
	c := New(cfg, elevation.NullProvider{})
	a := mustTrail(t, "a", [2]float64{0, 0}, [2]float64{0.001, 0})
	b := mustTrail(t, "b", [2]float64{0.0011, 0}, [2]float64{0.002, 0})
	out, rep := c.GapFix([]*core.Trail{a, b})
	assert.Equal(t, 1, rep.Bridges)
	assert.Len(t, out, 3)
}

func TestSnapAndSplitSplitsCrossingTrails(t *testing.T) {
	cfg := testCfg()
	cfg.IntersectionToleranceM = 5
	cfg.EndpointEpsilon = 0.01
	c := New(cfg, elevation.NullProvider{})

	horiz := mustTrail(t, "horizontal", [2]float64{-0.01, 0}, [2]float64{0.01, 0})
	vert := mustTrail(t, "vertical", [2]float64{0, -0.01}, [2]float64{0, 0.01})

	out, rep, err := c.SnapAndSplit([]*core.Trail{horiz, vert})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(out), 4, "both trails should split into two children")
	assert.Equal(t, 2, len(rep.Replaced))
	for _, tr := range out {
		assert.NotNil(t, tr.ParentUUID)
	}
}

func TestPreSplitLoopsSegmentsClosedTrail(t *testing.T) {
	cfg := testCfg()
	cfg.LoopMinSegments = 4
	cfg.EndpointEpsilon = 0.001
	cfg.IntersectionToleranceM = 5
	c := New(cfg, elevation.NullProvider{})

	loop := mustTrail(t, "loop",
		[2]float64{0, 0}, [2]float64{0.01, 0}, [2]float64{0.01, 0.01}, [2]float64{0, 0.01}, [2]float64{0, 0})

	out, rep, err := c.PreSplitLoops([]*core.Trail{loop})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(out), 2)
	assert.Equal(t, 1, len(rep.Replaced))
	for _, tr := range out {
		require.NotNil(t, tr.ParentUUID)
		assert.Equal(t, loop.UUID, *tr.ParentUUID)
	}
}
