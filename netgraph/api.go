// File: api.go
// Role: Thin, deterministic public facade: construction sugar and a
// read-only aggregate summary. No algorithms live here.
package netgraph

// GraphStats is an O(V+E) read-only summary of a graph's size and the
// lifecycle distribution of its edges.
type GraphStats struct {
	VertexCount       int
	EdgeCount         int
	EndpointCount     int
	IntersectionCount int
	CandidateEdges    int
	MergedEdges       int
	DedupedEdges      int
	FinalEdges        int
}

// Stats computes a snapshot summary of the graph. Locks are acquired and
// released separately for vertices and edges so neither blocks the other
// for the duration of the scan.
//
// Complexity: O(V+E).
func (g *Graph) Stats() *GraphStats {
	var s GraphStats

	g.muVert.RLock()
	s.VertexCount = len(g.vertices)
	for _, v := range g.vertices {
		if v.Kind == KindIntersection {
			s.IntersectionCount++
		} else {
			s.EndpointCount++
		}
	}
	g.muVert.RUnlock()

	g.muEdgeAdj.RLock()
	s.EdgeCount = len(g.edges)
	for _, e := range g.edges {
		switch e.State {
		case EdgeCandidate:
			s.CandidateEdges++
		case EdgeMerged:
			s.MergedEdges++
		case EdgeDeduped:
			s.DedupedEdges++
		case EdgeFinal:
			s.FinalEdges++
		}
	}
	g.muEdgeAdj.RUnlock()

	return &s
}
