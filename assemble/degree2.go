package assemble

import (
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// mergeDegree2Chains implements spec §4.4.3: any vertex with degree
// exactly 2 whose two incident edges come from attribute-compatible
// trails (same name when present, same surface) and meet with continuous
// geometry (within degree2_merge_tolerance_m of each other at the shared
// vertex) is dissolved, the two edges concatenated into one. Repeated to
// a fixed point since dissolving one vertex can create a new degree-2
// vertex at a chain's far end.
//
// Complexity: O(V) candidate scan per pass, O(passes) passes; passes are
// bounded by chain length so this terminates for any finite graph.
func (a *Assembler) mergeDegree2Chains(g *netgraph.Graph) *Report {
	rep := newReport("merge_degree2_chains")

	for {
		v, e1, e2, ok := nextDissolvable(a, g)
		if !ok {
			break
		}
		if err := dissolve(g, v, e1, e2); err != nil {
			rep.warnf("vertex %d: %v", v, err)
			break
		}
		rep.ChainsMerged++
	}

	return rep
}

// nextDissolvable scans vertices in ascending id order (determinism, spec
// §5) for the first one eligible to dissolve, so repeated calls make
// forward progress in a stable order across runs.
func nextDissolvable(a *Assembler, g *netgraph.Graph) (netgraph.VertexID, *netgraph.Edge, *netgraph.Edge, bool) {
	for _, v := range g.Vertices() {
		deg, err := g.Degree(v.ID)
		if err != nil || deg != 2 {
			continue
		}
		edges, err := g.Neighbors(v.ID)
		if err != nil || len(edges) != 2 {
			continue
		}
		e1, e2 := edges[0], edges[1]
		if e1.Source == e1.Target || e2.Source == e2.Target {
			continue // a true self-loop edge counts both ends at v; not a chain link
		}
		if !compatible(a, e1, e2) {
			continue
		}
		if !continuousAt(g, v.ID, e1, e2, a.cfg.Degree2MergeToleranceM) {
			continue
		}
		return v.ID, e1, e2, true
	}
	return 0, nil, nil, false
}

// compatible implements the "compatible trail attributes" clause: same
// name when present, same surface, and the same Bidirectional flag.
func compatible(a *Assembler, e1, e2 *netgraph.Edge) bool {
	t1 := a.trailsByUUID[e1.TrailUUID.String()]
	t2 := a.trailsByUUID[e2.TrailUUID.String()]
	if t1 == nil || t2 == nil {
		return false
	}
	if t1.Name != "" && t2.Name != "" && t1.Name != t2.Name {
		return false
	}
	if t1.Surface != t2.Surface {
		return false
	}
	return e1.Bidirectional == e2.Bidirectional
}

// continuousAt reports whether e1 and e2's endpoints at the shared vertex
// v land within tolM of each other's geometry end, i.e. there is no
// visible kink/gap introduced by concatenating them.
func continuousAt(g *netgraph.Graph, v netgraph.VertexID, e1, e2 *netgraph.Edge, tolM float64) bool {
	vert, ok := g.Vertex(v)
	if !ok {
		return false
	}
	end1 := endpointAt(e1, v)
	end2 := endpointAt(e2, v)
	return geom.PointDistanceMeters(end1, vert.Pos) <= tolM &&
		geom.PointDistanceMeters(end2, vert.Pos) <= tolM
}

// endpointAt returns e's geometric endpoint on the side touching v.
func endpointAt(e *netgraph.Edge, v netgraph.VertexID) geom.Point3 {
	if e.Source == v {
		p, _ := geom.StartPoint(e.Geometry)
		return p
	}
	p, _ := geom.EndPoint(e.Geometry)
	return p
}

// dissolve concatenates e1 and e2 into one edge spanning their far
// endpoints, removes v and the two originals, and inserts the merged
// edge. Geometry is oriented head-to-tail, reversing either side as
// needed so the shared vertex's copies meet in the middle and are
// dropped from the concatenation (they are identical positions).
func dissolve(g *netgraph.Graph, v netgraph.VertexID, e1, e2 *netgraph.Edge) error {
	far1 := otherEnd(e1, v)
	far2 := otherEnd(e2, v)

	line1 := orient(e1.Geometry, e1.Source == v)
	line2 := orient(e2.Geometry, e2.Target == v)

	merged := geom.MakeLine(append(geom.DumpPoints(line1), geom.DumpPoints(line2)[1:]...))

	trail := e1.TrailUUID
	if e1.LengthKM < e2.LengthKM {
		trail = e2.TrailUUID
	}

	newEdge, err := g.AddEdge(far1, far2, merged, trail)
	if err != nil {
		return err
	}
	newEdge.GainM = e1.GainM + e2.GainM
	newEdge.LossM = e1.LossM + e2.LossM
	newEdge.Bidirectional = e1.Bidirectional && e2.Bidirectional
	if err := g.SetState(newEdge.ID, netgraph.EdgeMerged); err != nil {
		return err
	}

	if err := g.RemoveEdge(e1.ID); err != nil {
		return err
	}
	if err := g.RemoveEdge(e2.ID); err != nil {
		return err
	}
	return g.RemoveVertex(v)
}

// otherEnd returns the endpoint of e that is not v.
func otherEnd(e *netgraph.Edge, v netgraph.VertexID) netgraph.VertexID {
	if e.Source == v {
		return e.Target
	}
	return e.Source
}

// orient returns l reversed when reverseToEnd is true and unchanged
// otherwise. dissolve uses it to make e1 end at the shared vertex (reverse
// when e1's Source is v) and e2 start there (reverse when e2's Target is
// v), ready for head-to-tail concatenation.
func orient(l geom.Line3, reverseToEnd bool) geom.Line3 {
	if !reverseToEnd {
		return l
	}
	pts := geom.DumpPoints(l)
	out := make([]geom.Point3, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return geom.MakeLine(out)
}
