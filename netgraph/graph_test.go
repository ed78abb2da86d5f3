package netgraph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineAt(lngs ...float64) geom.Line3 {
	pts := make([]geom.Point3, len(lngs))
	for i, lng := range lngs {
		pts[i] = geom.Point3{Lng: lng, Lat: 0}
	}
	return geom.Line3{Points: pts}
}

func TestAddVertexAssignsDenseIDs(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindIntersection)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, g.VertexCount())
	assert.Equal(t, KindIntersection, b.Kind)
}

func TestAddEdgeRejectsSelfLoopAndDegenerateLength(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)

	_, err := g.AddEdge(a.ID, a.ID, lineAt(0, 1), uuid.New())
	assert.ErrorIs(t, err, ErrSelfLoop)

	b := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	_, err = g.AddEdge(a.ID, b.ID, lineAt(0, 0), uuid.New())
	assert.ErrorIs(t, err, ErrDegenerateLength)
}

func TestAddEdgeRequiresExistingVertices(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	_, err := g.AddEdge(a.ID, VertexID(999), lineAt(0, 1), uuid.New())
	assert.ErrorIs(t, err, ErrVertexNotFound)
}

func TestAddEdgeIsBidirectionalByDefault(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	e, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)
	assert.True(t, e.Bidirectional)
	assert.True(t, g.HasEdge(a.ID, b.ID))
	assert.True(t, g.HasEdge(b.ID, a.ID))
	assert.InDelta(t, geom.LengthMeters(lineAt(0, 1))/1000.0, e.LengthKM, 1e-9)
}

func TestNeighborsKeepsParallelEdgesSorted(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	e1, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)
	e2, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)

	neighbors, err := g.Neighbors(a.ID)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, e1.ID, neighbors[0].ID)
	assert.Equal(t, e2.ID, neighbors[1].ID)
}

func TestDegreeCountsSingleIncidentEdge(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	_, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)

	deg, err := g.Degree(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deg)
}

func TestRemoveEdgeCleansAdjacency(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	e, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)

	require.NoError(t, g.RemoveEdge(e.ID))
	assert.False(t, g.HasEdge(a.ID, b.ID))
	assert.Equal(t, 0, g.EdgeCount())
	assert.ErrorIs(t, g.RemoveEdge(e.ID), ErrEdgeNotFound)
}

func TestRemoveVertexRemovesIncidentEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	_, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)

	require.NoError(t, g.RemoveVertex(a.ID))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 1, g.VertexCount())
}

func TestSetStateAdvancesLifecycle(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	e, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, EdgeCandidate, e.State)

	require.NoError(t, g.SetState(e.ID, EdgeFinal))
	got, ok := g.Edge(e.ID)
	require.True(t, ok)
	assert.Equal(t, EdgeFinal, got.State)
}

func TestStatsCountsKindsAndStates(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindIntersection)
	e, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)
	require.NoError(t, g.SetState(e.ID, EdgeFinal))

	s := g.Stats()
	assert.Equal(t, 2, s.VertexCount)
	assert.Equal(t, 1, s.EndpointCount)
	assert.Equal(t, 1, s.IntersectionCount)
	assert.Equal(t, 1, s.EdgeCount)
	assert.Equal(t, 1, s.FinalEdges)
}

func TestInducedSubgraphKeepsOnlySelectedVertices(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(geom.Point3{Lng: 0, Lat: 0}, KindEndpoint)
	b := g.AddVertex(geom.Point3{Lng: 1, Lat: 0}, KindEndpoint)
	c := g.AddVertex(geom.Point3{Lng: 2, Lat: 0}, KindEndpoint)
	_, err := g.AddEdge(a.ID, b.ID, lineAt(0, 1), uuid.New())
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, c.ID, lineAt(1, 2), uuid.New())
	require.NoError(t, err)

	sub := InducedSubgraph(g, map[VertexID]bool{a.ID: true, b.ID: true})
	assert.Equal(t, 2, sub.VertexCount())
	assert.Equal(t, 1, sub.EdgeCount())
	assert.True(t, sub.HasEdge(a.ID, b.ID))
}
