package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/netgraph"
)

func TestShortestPathFindsDirectRoute(t *testing.T) {
	g := buildChain(t)
	verts := g.Vertices()
	src, dst := verts[0].ID, verts[2].ID

	p, err := shortestPath(g, src, dst, nil, nil)
	require.NoError(t, err)
	assert.Len(t, p.edges, 2)
	assert.InDelta(t, 4.0, p.distanceKM, 1e-9)
}

func TestShortestPathNoPathReturnsErr(t *testing.T) {
	g := netgraph.NewGraph()
	a := g.AddVertex(pt(0, 0), netgraph.KindEndpoint)
	b := g.AddVertex(pt(1, 1), netgraph.KindEndpoint)
	_, err := shortestPath(g, a.ID, b.ID, nil, nil)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestKShortestPathsReturnsAtLeastOne(t *testing.T) {
	g := buildTriangle(t)
	verts := g.Vertices()
	paths, err := kShortestPaths(g, verts[0].ID, verts[1].ID, 3)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.InDelta(t, 2.0, paths[0].distanceKM, 1e-9)
}
