// Package netgraph is the routable network: Vertex (an Endpoint or an
// Intersection per spec §3), Edge (one routable segment derived from
// exactly one conditioned trail), and Graph, a thread-safe container of
// both.
//
// Graph is a direct generalization of github.com/katalvlaran/lvlath/core's
// Graph — same two-mutex split (muVert for vertices, muEdgeAdj for edges
// and adjacency), same nested-map adjacency shape giving O(1) edge lookup
// and deterministic sorted iteration — carried over from string vertex
// IDs and a bare metadata bag to integer VertexID/EdgeID and typed
// Vertex/Edge structs that hold the 3D geometry and trail lineage L3
// routing needs.
//
// Unlike the graph it generalizes, netgraph.Graph has no directed,
// weighted, multi-edge, or loop-permission flags: every edge produced by
// assembly is an undirected, simple, positively-weighted segment (loops
// are pre-split before assembly per spec §4.3.4), so those knobs have no
// place here. What it keeps is the lifecycle an edge moves through as L2
// assembly runs — Candidate, Merged, Deduped, Final — tracked on EdgeState
// rather than left to the caller.
//
// Core methods:
//
//	AddVertex(pos geom.Point3, kind VertexKind) *Vertex                 // O(1)
//	AddEdge(src, dst VertexID, geometry geom.Line3, trail uuid.UUID) (*Edge, error) // O(1)
//	RemoveEdge(id EdgeID) error                                         // O(V+E)
//	Vertex(id VertexID) (*Vertex, bool)                                 // O(1)
//	Edge(id EdgeID) (*Edge, bool)                                       // O(1)
//	Neighbors(id VertexID) ([]*Edge, error)                             // O(deg log deg)
//	Degree(id VertexID) (int, error)                                    // O(deg)
//	Vertices() []*Vertex                                                // O(V log V)
//	Edges() []*Edge                                                     // O(E log E)
//
// Vertex/edge lifecycle mutators live in methods_vertices.go and
// methods_edges.go; read-only facade helpers live in api.go; non-mutating
// subnetwork extraction (used by connected-component scheduling before L3
// search) lives in view.go.
package netgraph
