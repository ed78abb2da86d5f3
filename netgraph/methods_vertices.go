// File: methods_vertices.go
// Role: Vertex lifecycle and queries.
//
// Determinism: Vertices() returns vertices sorted by VertexID ascending.
// Concurrency: vertex catalog protected by muVert; adjacency bootstrap
// happens under muEdgeAdj to keep invariants consistent with edge methods.
package netgraph

import (
	"sort"

	"github.com/shaydu/carthorse/geom"
)

// AddVertex inserts a new vertex at pos with the given kind and returns it.
// Unlike a user-addressed graph, vertex identity here is assigned by the
// graph itself: assembly (spec §4.4) discovers vertices by coordinate, not
// by a caller-chosen key, so there is no "already exists" case to make
// idempotent.
//
// Complexity: O(1) amortized.
func (g *Graph) AddVertex(pos geom.Point3, kind VertexKind) *Vertex {
	g.muVert.Lock()
	g.nextVertexID++
	id := g.nextVertexID
	v := &Vertex{ID: id, Pos: pos, Kind: kind}
	g.vertices[id] = v
	g.muVert.Unlock()

	g.muEdgeAdj.Lock()
	g.ensureAdjID(id)
	g.muEdgeAdj.Unlock()

	return v
}

// Vertex returns the vertex with the given id, if present.
//
// Complexity: O(1).
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	v, ok := g.vertices[id]
	return v, ok
}

// SetKind reclassifies a vertex.
//
// Complexity: O(1).
func (g *Graph) SetKind(id VertexID, kind VertexKind) error {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	v, ok := g.vertices[id]
	if !ok {
		return ErrVertexNotFound
	}
	v.Kind = kind
	return nil
}

// RemoveVertex deletes the vertex and all incident edges.
//
// Complexity: O(deg(v) + E) to scan and clean the edge catalog.
func (g *Graph) RemoveVertex(id VertexID) error {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	if _, ok := g.vertices[id]; !ok {
		return ErrVertexNotFound
	}
	for eid, e := range g.edges {
		if e.Source == id || e.Target == id {
			g.removeEdgeFromAdj(eid, e)
			delete(g.edges, eid)
		}
	}
	delete(g.vertices, id)
	g.cleanupAdjacency()
	return nil
}

// Vertices returns all vertices sorted by VertexID ascending.
//
// Complexity: O(V log V).
func (g *Graph) Vertices() []*Vertex {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	out := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VertexCount returns the number of vertices.
//
// Complexity: O(1).
func (g *Graph) VertexCount() int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return len(g.vertices)
}

// Degree returns the number of edges incident to id, counting a self-loop
// (a segmentized loop trail whose two cut ends coincide) twice.
//
// Complexity: O(deg(v)).
func (g *Graph) Degree(id VertexID) (int, error) {
	g.muVert.RLock()
	_, ok := g.vertices[id]
	g.muVert.RUnlock()
	if !ok {
		return 0, ErrVertexNotFound
	}

	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	n := 0
	for other, edgeSet := range g.adjacency[id] {
		if other == id {
			n += 2 * len(edgeSet)
			continue
		}
		n += len(edgeSet)
	}
	return n, nil
}

// ensureAdjID makes adjacency[id] non-nil. Caller must hold muEdgeAdj.
func (g *Graph) ensureAdjID(id VertexID) {
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[VertexID]map[EdgeID]struct{})
	}
}
