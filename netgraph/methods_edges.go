// File: methods_edges.go
// Role: Edge lifecycle and queries: AddEdge/RemoveEdge/HasEdge/Edge/Edges,
// plus predicate-based removal and lifecycle-state transitions.
//
// Determinism: Edges() returns edges sorted by EdgeID ascending.
// Concurrency: mutations take the muEdgeAdj write lock; queries take its
// read lock.
package netgraph

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/geom"
)

// AddEdge creates a new routable segment between src and dst derived from
// trail. Both endpoints must already exist (assembly always creates
// vertices before the edges touching them). Edges are bidirectional by
// default per spec §3; callers building a one-way trail set Bidirectional
// to false afterward via the returned *Edge.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(src, dst VertexID, geometry geom.Line3, trail uuid.UUID) (*Edge, error) {
	if src == dst {
		return nil, ErrSelfLoop
	}
	length := geom.LengthMeters(geometry)
	if length <= 0 {
		return nil, ErrDegenerateLength
	}

	g.muVert.RLock()
	_, srcOK := g.vertices[src]
	_, dstOK := g.vertices[dst]
	g.muVert.RUnlock()
	if !srcOK || !dstOK {
		return nil, ErrVertexNotFound
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	g.nextEdgeID++
	id := g.nextEdgeID
	e := &Edge{
		ID:            id,
		Source:        src,
		Target:        dst,
		TrailUUID:     trail,
		Geometry:      geometry,
		LengthKM:      length / 1000.0,
		Bidirectional: true,
		State:         EdgeCandidate,
	}
	g.edges[id] = e
	g.ensureAdjID(src)
	g.ensureAdjID(dst)
	g.ensureAdjPair(src, dst)
	g.adjacency[src][dst][id] = struct{}{}
	g.ensureAdjPair(dst, src)
	g.adjacency[dst][src][id] = struct{}{}

	return e, nil
}

// RemoveEdge deletes the edge with the given id.
//
// Complexity: O(V+E), since it sweeps the whole adjacency map for empty
// entries after the removal.
func (g *Graph) RemoveEdge(id EdgeID) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	delete(g.edges, id)
	g.removeEdgeFromAdj(id, e)
	g.cleanupAdjacency()
	return nil
}

// Edge returns the edge with the given id, if present.
//
// Complexity: O(1).
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// SetState advances an edge to the given lifecycle state. It does not
// enforce monotonicity: assembly stages call it in the order Candidate →
// Merged → Deduped → Final, but the graph itself trusts its caller.
//
// Complexity: O(1).
func (g *Graph) SetState(id EdgeID, state EdgeState) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	e.State = state
	return nil
}

// HasEdge reports whether any edge connects a and b directly.
//
// Complexity: O(1).
func (g *Graph) HasEdge(a, b VertexID) bool {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	return len(g.adjacency[a][b]) > 0
}

// Neighbors returns the edges incident to id, sorted by EdgeID ascending.
//
// Complexity: O(deg log deg).
func (g *Graph) Neighbors(id VertexID) ([]*Edge, error) {
	g.muVert.RLock()
	_, ok := g.vertices[id]
	g.muVert.RUnlock()
	if !ok {
		return nil, ErrVertexNotFound
	}

	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	seen := make(map[EdgeID]struct{})
	var out []*Edge
	for _, edgeSet := range g.adjacency[id] {
		for eid := range edgeSet {
			if _, dup := seen[eid]; dup {
				continue
			}
			seen[eid] = struct{}{}
			out = append(out, g.edges[eid])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Edges returns all edges sorted by EdgeID ascending.
//
// Complexity: O(E log E).
func (g *Graph) Edges() []*Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EdgeCount returns the number of edges.
//
// Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	return len(g.edges)
}

// FilterEdges removes every edge for which pred returns false. pred must
// not mutate the graph.
//
// Complexity: O(E) scan plus O(V+E) adjacency cleanup.
func (g *Graph) FilterEdges(pred func(*Edge) bool) {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	for id, e := range g.edges {
		if !pred(e) {
			g.removeEdgeFromAdj(id, e)
			delete(g.edges, id)
		}
	}
	g.cleanupAdjacency()
}

// ensureAdjPair ensures adjacency[from][to] is initialized. Caller must
// hold muEdgeAdj and must have already called ensureAdjID(from).
func (g *Graph) ensureAdjPair(from, to VertexID) {
	if g.adjacency[from][to] == nil {
		g.adjacency[from][to] = make(map[EdgeID]struct{})
	}
}

// removeEdgeFromAdj deletes id from both adjacency directions. Caller must
// hold muEdgeAdj.
func (g *Graph) removeEdgeFromAdj(id EdgeID, e *Edge) {
	if m := g.adjacency[e.Source][e.Target]; m != nil {
		delete(m, id)
	}
	if m := g.adjacency[e.Target][e.Source]; m != nil {
		delete(m, id)
	}
}

// cleanupAdjacency prunes empty nested maps. Caller must hold muEdgeAdj.
func (g *Graph) cleanupAdjacency() {
	for u, m := range g.adjacency {
		for v, em := range m {
			if len(em) == 0 {
				delete(m, v)
			}
		}
		if len(m) == 0 {
			delete(g.adjacency, u)
		}
	}
}
