package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHawickCircuitsFindsTriangle(t *testing.T) {
	g := buildTriangle(t)
	circuits := hawickCircuits(g, 10)
	require.Len(t, circuits, 1)
	assert.Len(t, circuits[0].edges, 3)
}

func TestHawickCircuitsNoneOnAcyclicGraph(t *testing.T) {
	g := buildChain(t)
	circuits := hawickCircuits(g, 10)
	assert.Empty(t, circuits)
}

func TestHawickCircuitsRespectsLengthBound(t *testing.T) {
	g := buildTriangle(t)
	circuits := hawickCircuits(g, 5) // triangle totals 6km
	assert.Empty(t, circuits)
}
