package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

func flatLine(lngs ...float64) geom.Line3 {
	pts := make([]geom.Point3, len(lngs))
	for i, lng := range lngs {
		pts[i] = geom.Point3{Lng: lng, Lat: 0}
	}
	return geom.Line3{Points: pts}
}

func openTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Open("test-region", Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Drop() })
	return ws
}

func TestInsertTrailsAndQueryByBBox(t *testing.T) {
	ws := openTestWorkspace(t)
	trail, err := core.NewTrail("ridge loop", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)

	require.NoError(t, ws.InsertTrails([]*core.Trail{trail}))

	found, err := ws.QueryByBBox(core.BBox{MinLng: -1, MinLat: -1, MaxLng: 2, MaxLat: 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, trail.UUID, found[0].UUID)
	assert.Equal(t, trail.Name, found[0].Name)
}

func TestInsertTrailsRejectsBatchOnValidationFailure(t *testing.T) {
	ws := openTestWorkspace(t)
	good, err := core.NewTrail("good", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	bad, err := core.NewTrail("bad", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	bad.Surface = core.Surface(99)

	err = ws.InsertTrails([]*core.Trail{good, bad})
	require.Error(t, err)

	found, err := ws.QueryByBBox(core.BBox{MinLng: -1, MinLat: -1, MaxLng: 2, MaxLat: 1})
	require.NoError(t, err)
	assert.Empty(t, found, "partial batch must not be committed")
}

func TestInsertTrailsRejectsDuplicateUUIDWithinBatch(t *testing.T) {
	ws := openTestWorkspace(t)
	trail, err := core.NewTrail("t", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	dup := *trail

	err = ws.InsertTrails([]*core.Trail{trail, &dup})
	assert.Error(t, err)
}

func TestFreezeRejectsFurtherTrailInserts(t *testing.T) {
	ws := openTestWorkspace(t)
	require.NoError(t, ws.Freeze())
	assert.ErrorIs(t, ws.Freeze(), ErrAlreadyFrozen)

	trail, err := core.NewTrail("t", "park", flatLine(0, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, ws.InsertTrails([]*core.Trail{trail}), ErrFrozen)
}

func TestSnapshotRollbackDiscardsChanges(t *testing.T) {
	ws := openTestWorkspace(t)
	trail, err := core.NewTrail("t", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	require.NoError(t, ws.InsertTrails([]*core.Trail{trail}))

	snap, err := ws.Snapshot()
	require.NoError(t, err)

	trail2, err := core.NewTrail("t2", "park", geom.Line3{Points: []geom.Point3{{Lng: 2, Lat: 2}, {Lng: 3, Lat: 3}}})
	require.NoError(t, err)
	require.NoError(t, ws.InsertTrails([]*core.Trail{trail2}))

	require.NoError(t, snap.Rollback())

	found, err := ws.QueryByBBox(core.BBox{MinLng: -1, MinLat: -1, MaxLng: 10, MaxLat: 10})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, trail.UUID, found[0].UUID)
}

func TestDeleteTrailRemovesFromIndex(t *testing.T) {
	ws := openTestWorkspace(t)
	trail, err := core.NewTrail("t", "park", geom.Line3{Points: []geom.Point3{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}})
	require.NoError(t, err)
	require.NoError(t, ws.InsertTrails([]*core.Trail{trail}))

	require.NoError(t, ws.DeleteTrail(trail.UUID))
	found, err := ws.QueryByBBox(core.BBox{MinLng: -1, MinLat: -1, MaxLng: 2, MaxLat: 1})
	require.NoError(t, err)
	assert.Empty(t, found)
}
