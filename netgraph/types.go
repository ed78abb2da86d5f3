// Package netgraph is the routable network built by L2 assembly and
// searched by L3 routing: Vertex, Edge, and a thread-safe Graph container.
//
// Generalizes github.com/katalvlaran/lvlath/core's Graph (string vertex
// IDs, int64 edge weights, a bare Metadata bag) to spec §3's domain:
// integer VertexID/EdgeID, float64 length/elevation, and Vertex/Edge
// structs that carry trail lineage and 3D geometry instead of opaque
// metadata.
//
// All netgraph APIs use separate sync.RWMutex locks internally (muVert for
// vertices, muEdgeAdj for edges and adjacency), so a graph can safely be
// mutated and queried across goroutines with minimal contention — the same
// split the teacher's core.Graph uses.
//
// This file declares Vertex, Edge, Graph, VertexKind, EdgeState, and the
// sentinel errors. Vertex/edge lifecycle methods live in
// methods_vertices.go / methods_edges.go; read-only facade helpers live in
// api.go; non-mutating views (subnetwork extraction) live in view.go.
package netgraph

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/geom"
)

// Sentinel errors for netgraph operations.
var (
	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("netgraph: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("netgraph: edge not found")

	// ErrSelfLoop indicates source == target for an edge whose trail was
	// not a segmentized loop (spec §4.4.2 rejects these).
	ErrSelfLoop = errors.New("netgraph: source equals target")

	// ErrDegenerateLength indicates an edge with length <= 0.
	ErrDegenerateLength = errors.New("netgraph: edge length must be > 0")
)

// VertexKind classifies a Vertex per spec §3: a location where ≥2 distinct
// trails meet is an Intersection, otherwise an Endpoint.
type VertexKind int

const (
	KindEndpoint VertexKind = iota
	KindIntersection
)

// String renders the kind the way reports and logs name it.
func (k VertexKind) String() string {
	if k == KindIntersection {
		return "intersection"
	}
	return "endpoint"
}

// EdgeState is the lifecycle spec §4.4's closing paragraph assigns every
// edge during L2 assembly: Candidate → Merged → Deduped → Final. The
// order is not enforced: SetState accepts any state, including an earlier
// one.
type EdgeState int

const (
	EdgeCandidate EdgeState = iota
	EdgeMerged
	EdgeDeduped
	EdgeFinal
)

// VertexID and EdgeID are dense integers, unique within one pipeline run.
type VertexID int64

// EdgeID is a dense integer, unique within one pipeline run.
type EdgeID int64

// Vertex is a node in the routable graph.
type Vertex struct {
	ID   VertexID
	Pos  geom.Point3
	Kind VertexKind

	// ConnectedTrails is the multiset of trail uuids incident to this
	// vertex (duplicates allowed: a loop trail may touch a vertex twice).
	ConnectedTrails []uuid.UUID
}

// Edge is a routable segment derived from exactly one conditioned trail.
type Edge struct {
	ID            EdgeID
	Source        VertexID
	Target        VertexID
	TrailUUID     uuid.UUID
	Geometry      geom.Line3
	LengthKM      float64
	GainM         float64
	LossM         float64
	Bidirectional bool
	State         EdgeState
}

// Graph is the in-memory routable network assembled by L2 and searched by
// L3. Vertex storage is guarded by muVert; edge storage and adjacency are
// guarded by muEdgeAdj, so vertex reads never contend with edge mutation.
type Graph struct {
	muVert    sync.RWMutex
	muEdgeAdj sync.RWMutex

	nextVertexID VertexID
	nextEdgeID   EdgeID

	vertices map[VertexID]*Vertex
	edges    map[EdgeID]*Edge

	// adjacency[v][w][edgeID] mirrors every edge in both directions,
	// whatever its Bidirectional flag, so Neighbors(v) is a single map
	// lookup regardless of which endpoint v is.
	adjacency map[VertexID]map[VertexID]map[EdgeID]struct{}
}

// NewGraph returns an empty routable graph.
//
// Complexity: O(1).
func NewGraph() *Graph {
	return &Graph{
		vertices:  make(map[VertexID]*Vertex),
		edges:     make(map[EdgeID]*Edge),
		adjacency: make(map[VertexID]map[VertexID]map[EdgeID]struct{}),
	}
}
