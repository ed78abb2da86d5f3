package assemble

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// bridgeComponents implements spec §4.4.5: a best-effort pass that
// synthesizes a short connector edge between vertices of distinct
// components when they lie within edge_bridging_tolerance_m of each
// other, capped at short_connector_max_length_m. A network with multiple
// components afterward is still valid output — bridging reduces, not
// eliminates, component count.
//
// Complexity: O(V) to find components (BFS flood-fill, the same shape as
// route.partitionSubnetworks), then O(c^2) candidate-pair scan over c
// components — components are typically few relative to vertices.
func (a *Assembler) bridgeComponents(g *netgraph.Graph) *Report {
	rep := newReport("bridge_components")

	limit := a.cfg.EdgeBridgingToleranceM
	if limit <= 0 {
		return rep
	}
	maxLen := a.cfg.ShortConnectorMaxLengthM
	if maxLen <= 0 {
		maxLen = limit
	}

	comps := connectedComponents(g)
	if len(comps) < 2 {
		return rep
	}

	used := make(map[netgraph.VertexID]bool)
	for i := 0; i < len(comps); i++ {
		for j := i + 1; j < len(comps); j++ {
			v1, v2, dist, ok := closestPair(g, comps[i], comps[j], used, limit)
			if !ok || dist > maxLen {
				continue
			}
			vtx1, _ := g.Vertex(v1)
			vtx2, _ := g.Vertex(v2)
			line := geom.MakeLine([]geom.Point3{vtx1.Pos, vtx2.Pos})
			e, err := g.AddEdge(v1, v2, line, uuid.New())
			if err != nil {
				rep.warnf("bridge %d<->%d: %v", v1, v2, err)
				continue
			}
			if err := g.SetState(e.ID, netgraph.EdgeCandidate); err != nil {
				rep.warnf("bridge %d: %v", e.ID, err)
			}
			used[v1] = true
			used[v2] = true
			a.trailsByUUID[e.TrailUUID.String()] = syntheticConnectorTrail(e)
			rep.Bridges++
		}
	}

	return rep
}

// syntheticConnectorTrail gives a bridge edge a trail record so
// downstream attribute lookups (degree-2 compatibility, overlap
// completeness) don't nil-panic on a uuid that has no staging-workspace
// counterpart.
func syntheticConnectorTrail(e *netgraph.Edge) *core.Trail {
	return &core.Trail{
		UUID:     e.TrailUUID,
		Name:     "",
		LengthKM: e.LengthKM,
		Tags:     core.TagBag{"synthetic": "true", "kind": "short_connector"},
	}
}

// connectedComponents returns each component's vertex id set via BFS
// flood-fill, ordered by lowest vertex id for determinism.
func connectedComponents(g *netgraph.Graph) []map[netgraph.VertexID]bool {
	verts := g.Vertices()
	visited := make(map[netgraph.VertexID]bool, len(verts))

	type comp struct {
		min  netgraph.VertexID
		keep map[netgraph.VertexID]bool
	}
	var comps []comp

	for _, v := range verts {
		if visited[v.ID] {
			continue
		}
		keep := map[netgraph.VertexID]bool{v.ID: true}
		visited[v.ID] = true
		queue := []netgraph.VertexID{v.ID}
		min := v.ID
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			edges, err := g.Neighbors(cur)
			if err != nil {
				continue
			}
			for _, e := range edges {
				other := e.Target
				if other == cur {
					other = e.Source
				}
				if !visited[other] {
					visited[other] = true
					keep[other] = true
					queue = append(queue, other)
					if other < min {
						min = other
					}
				}
			}
		}
		comps = append(comps, comp{min: min, keep: keep})
	}

	sort.Slice(comps, func(i, j int) bool { return comps[i].min < comps[j].min })
	out := make([]map[netgraph.VertexID]bool, len(comps))
	for i, c := range comps {
		out[i] = c.keep
	}
	return out
}

// closestPair finds the nearest vertex pair (one from each component,
// neither already used by an earlier bridge this pass) within limit
// meters, scanning in ascending vertex-id order so ties resolve the same
// way on every run.
func closestPair(g *netgraph.Graph, a, b map[netgraph.VertexID]bool, used map[netgraph.VertexID]bool, limit float64) (netgraph.VertexID, netgraph.VertexID, float64, bool) {
	var as, bs []netgraph.VertexID
	for id := range a {
		if !used[id] {
			as = append(as, id)
		}
	}
	for id := range b {
		if !used[id] {
			bs = append(bs, id)
		}
	}
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })

	best := limit
	var bestA, bestB netgraph.VertexID
	found := false
	for _, v1 := range as {
		p1, _ := g.Vertex(v1)
		for _, v2 := range bs {
			p2, _ := g.Vertex(v2)
			d := geom.PointDistanceMeters(p1.Pos, p2.Pos)
			if d <= best {
				best = d
				bestA, bestB = v1, v2
				found = true
			}
		}
	}
	return bestA, bestB, best, found
}
