// Package export is the core's write-out boundary (spec §6): given the
// finalized trails, vertices, edges, and route recommendations of a run,
// serialize them to an opaque sink. The core never inspects a Sink's
// contents — it only asks an Exporter to drive one.
package export

import (
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// Result bundles everything one run produces and hands to an Exporter.
// Recommendations may be nil when a caller exports only the network
// (e.g. before L3 has run).
type Result struct {
	Trails          []*core.Trail
	Vertices        []*netgraph.Vertex
	Edges           []*netgraph.Edge
	Recommendations []*core.RouteRecommendation
}

// Exporter writes a Result to sink. Implementations must preserve 3D
// coordinates — spec §6 explicitly forbids Z-stripping on export.
type Exporter interface {
	Export(result Result, sink Sink) error
}

// Sink is an opaque write target an Exporter drives; the two concrete
// forms are SQLiteSink (a file path) and GeoJSONSink (a file path plus
// which record kind to emit, since GeoJSON has no native multi-table
// shape).
type Sink interface {
	isSink()
}
