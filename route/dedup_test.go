package route

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

func TestFingerprintIgnoresEdgeOrder(t *testing.T) {
	fwd := fingerprint("loop6k", []netgraph.EdgeID{1, 2, 3})
	rev := fingerprint("loop6k", []netgraph.EdgeID{3, 2, 1})
	assert.Equal(t, fwd, rev)
}

func TestFingerprintDiffersByPattern(t *testing.T) {
	a := fingerprint("loop6k", []netgraph.EdgeID{1, 2, 3})
	b := fingerprint("oab8k", []netgraph.EdgeID{1, 2, 3})
	assert.NotEqual(t, a, b)
}

func TestDedupeFingerprintsKeepsHighestScore(t *testing.T) {
	pat := core.RoutePattern{Name: "loop6k"}
	low := &core.RouteRecommendation{UUID: uuid.New(), Pattern: pat, Edges: []netgraph.EdgeID{1, 2, 3}, Score: 40}
	high := &core.RouteRecommendation{UUID: uuid.New(), Pattern: pat, Edges: []netgraph.EdgeID{3, 2, 1}, Score: 90}

	out := dedupeFingerprints([]*core.RouteRecommendation{low, high})
	assert.Len(t, out, 1)
	assert.Equal(t, 90.0, out[0].Score)
}

func TestDedupeFingerprintsKeepsDistinctEdgeSets(t *testing.T) {
	pat := core.RoutePattern{Name: "loop6k"}
	a := &core.RouteRecommendation{UUID: uuid.New(), Pattern: pat, Edges: []netgraph.EdgeID{1, 2, 3}, Score: 40}
	b := &core.RouteRecommendation{UUID: uuid.New(), Pattern: pat, Edges: []netgraph.EdgeID{4, 5, 6}, Score: 90}

	out := dedupeFingerprints([]*core.RouteRecommendation{a, b})
	assert.Len(t, out, 2)
}
