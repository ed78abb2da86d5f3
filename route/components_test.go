package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaydu/carthorse/netgraph"
)

func TestPartitionSubnetworksSplitsDisjointComponents(t *testing.T) {
	g := netgraph.NewGraph()
	a := g.AddVertex(pt(0, 0), netgraph.KindEndpoint)
	b := g.AddVertex(pt(0.01, 0), netgraph.KindEndpoint)
	addTestEdge(t, g, a, b, 1, 10, 0)

	c := g.AddVertex(pt(1, 1), netgraph.KindEndpoint)
	d := g.AddVertex(pt(1.01, 1), netgraph.KindEndpoint)
	addTestEdge(t, g, c, d, 1, 10, 0)

	subnets, skipped := partitionSubnetworks(g, 2, 1000)
	assert.Empty(t, skipped)
	require.Len(t, subnets, 2)
	for _, s := range subnets {
		assert.Equal(t, 2, len(s.Vertices()))
	}
}

func TestPartitionSubnetworksSkipsUndersizedComponents(t *testing.T) {
	g := netgraph.NewGraph()
	a := g.AddVertex(pt(0, 0), netgraph.KindEndpoint)
	b := g.AddVertex(pt(0.01, 0), netgraph.KindEndpoint)
	addTestEdge(t, g, a, b, 1, 10, 0)

	subnets, skipped := partitionSubnetworks(g, 3, 1000)
	assert.Empty(t, subnets)
	require.Len(t, skipped, 1)
}

func TestPartitionSubnetworksSkipsOversizedComponents(t *testing.T) {
	g := buildTriangle(t)
	subnets, skipped := partitionSubnetworks(g, 1, 2)
	assert.Empty(t, subnets)
	require.Len(t, skipped, 1)
}
