package assemble

import (
	"sort"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// vertexPairKey is an unordered endpoint-pair grouping key: edges sharing
// the same two endpoints (in either direction) are overlap candidates
// (spec §4.4.4).
type vertexPairKey struct {
	lo, hi netgraph.VertexID
}

func pairKey(e *netgraph.Edge) vertexPairKey {
	if e.Source <= e.Target {
		return vertexPairKey{lo: e.Source, hi: e.Target}
	}
	return vertexPairKey{lo: e.Target, hi: e.Source}
}

// deduplicateOverlaps implements spec §4.4.4: among edges sharing the
// same endpoint pair, drop all but one when their geometries are within
// spatial_tolerance_m Hausdorff distance of each other, keeping the
// longer edge (ties broken by attribute completeness, then by the trail
// uuid string so the result is deterministic, spec §5).
//
// Complexity: O(E) grouping, O(k^2) per group of size k sharing an
// endpoint pair — groups are expected small (duplicate digitizations of
// the same physical trail), never the whole graph.
func (a *Assembler) deduplicateOverlaps(g *netgraph.Graph) *Report {
	rep := newReport("deduplicate_overlaps")

	groups := make(map[vertexPairKey][]*netgraph.Edge)
	for _, e := range g.Edges() {
		k := pairKey(e)
		groups[k] = append(groups[k], e)
	}

	var keys []vertexPairKey
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lo != keys[j].lo {
			return keys[i].lo < keys[j].lo
		}
		return keys[i].hi < keys[j].hi
	})

	dropped := make(map[netgraph.EdgeID]bool)
	for _, k := range keys {
		edges := groups[k]
		if len(edges) < 2 {
			continue
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
		for i := 0; i < len(edges); i++ {
			if dropped[edges[i].ID] {
				continue
			}
			for j := i + 1; j < len(edges); j++ {
				if dropped[edges[j].ID] {
					continue
				}
				if geom.HausdorffMeters(edges[i].Geometry, edges[j].Geometry) > a.cfg.SpatialToleranceM {
					continue
				}
				loser := a.pickLoser(edges[i], edges[j])
				dropped[loser.ID] = true
				rep.OverlapsDropped++
			}
		}
	}

	for id := range dropped {
		if err := g.RemoveEdge(id); err != nil {
			rep.warnf("edge %d: %v", id, err)
			continue
		}
	}
	for _, e := range g.Edges() {
		_ = g.SetState(e.ID, netgraph.EdgeDeduped)
	}

	return rep
}

// pickLoser returns the edge to drop: the shorter of the two, or (on a
// length tie) the one whose origin trail lacks a name, or (on a full
// tie) the one with the lexicographically larger trail uuid, keeping the
// choice deterministic.
func (a *Assembler) pickLoser(e1, e2 *netgraph.Edge) *netgraph.Edge {
	if e1.LengthKM != e2.LengthKM {
		if e1.LengthKM < e2.LengthKM {
			return e1
		}
		return e2
	}
	t1 := a.trailsByUUID[e1.TrailUUID.String()]
	t2 := a.trailsByUUID[e2.TrailUUID.String()]
	c1, c2 := attrCompleteness(t1), attrCompleteness(t2)
	if c1 != c2 {
		if c1 < c2 {
			return e1
		}
		return e2
	}
	if e1.TrailUUID.String() > e2.TrailUUID.String() {
		return e1
	}
	return e2
}

// attrCompleteness is a crude count of populated descriptive fields, used
// only to break exact length ties deterministically.
func attrCompleteness(t *core.Trail) int {
	if t == nil {
		return 0
	}
	n := 0
	if t.Name != "" {
		n++
	}
	if t.Surface.Valid() {
		n++
	}
	return n
}
