package runlifecycle

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Region = "test-region"
	cfg.L3.MinSubnetworkSize = 2
	cfg.L3.MaxSubnetworkSize = 1000
	cfg.L3.Patterns = []config.PatternSpec{
		{Name: "loop6k", Shape: "loop", TargetDistanceKM: 6, TargetElevationGainM: 300},
	}
	return cfg
}

func straightTrail(t *testing.T, name string, lng0, lat0, lng1, lat1 float64) *core.Trail {
	t.Helper()
	line := geom.MakeLine([]geom.Point3{{Lng: lng0, Lat: lat0}, {Lng: lng1, Lat: lat1}})
	tr, err := core.NewTrail(name, "test-region", line)
	require.NoError(t, err)
	return tr
}

func prepareRun(t *testing.T) *Run {
	t.Helper()
	r, err := PrepareRegion(testConfig(t), store.Options{InMemory: true}, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Cleanup() })
	return r
}

func TestInstallValidatesConfig(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, Install(cfg))

	bad := cfg
	bad.Region = ""
	assert.Error(t, Install(bad))
}

func TestRunL1RequiresStagedTrails(t *testing.T) {
	r := prepareRun(t)
	_, err := r.RunL1(context.Background())
	require.Error(t, err)
	var cerr *carterr.CarthorseError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carterr.ValidationFailed, cerr.Kind)
}

func TestRunL2RequiresL1First(t *testing.T) {
	r := prepareRun(t)
	_, err := r.RunL2(context.Background())
	require.Error(t, err)
	var cerr *carterr.CarthorseError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carterr.Internal, cerr.Kind)
}

func TestRunL3RequiresL2First(t *testing.T) {
	r := prepareRun(t)
	_, err := r.RunL3(context.Background(), nil)
	require.Error(t, err)
	var cerr *carterr.CarthorseError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carterr.Internal, cerr.Kind)
}

func TestFullPipelineHappyPath(t *testing.T) {
	r := prepareRun(t)

	trails := []*core.Trail{
		straightTrail(t, "a", 0, 0, 0.01, 0.002),
		straightTrail(t, "b", 0.01, 0.002, 0.02, 0.01),
		straightTrail(t, "c", 0.02, 0.01, 0, 0),
	}
	require.NoError(t, r.Workspace().InsertTrails(trails))

	condReports, err := r.RunL1(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, condReports)

	// RunL1 cannot be run twice.
	_, err = r.RunL1(context.Background())
	assert.Error(t, err)

	asmReports, err := r.RunL2(context.Background())
	require.NoError(t, err)
	require.NotNil(t, asmReports)

	routeReports, err := r.RunL3(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, routeReports)

	summary := r.Summary(condReports, asmReports, routeReports, len(trails))
	assert.Equal(t, len(trails), summary.TrailsIn)
	assert.GreaterOrEqual(t, summary.Vertices, 0)
}

func TestRunL3SkipsSubnetworksBelowMinSize(t *testing.T) {
	r := prepareRun(t)
	require.NoError(t, r.Workspace().InsertTrails([]*core.Trail{
		straightTrail(t, "lonely", 10, 10, 10.01, 10.01),
	}))
	_, err := r.RunL1(context.Background())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.L3.MinSubnetworkSize = 100
	r.cfg = cfg

	_, err = r.RunL2(context.Background())
	require.NoError(t, err)

	reports, err := r.RunL3(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].SubnetworksSkipped)
}
