// Package assemble implements L2 network assembly (spec §4.4): deriving a
// routable netgraph.Graph from conditioned trails via vertex extraction,
// edge construction, degree-2 chain merging, overlap deduplication, and
// best-effort component bridging.
package assemble

import (
	"errors"
	"fmt"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// errAllEdgesRejected signals that construct_edges produced zero edges
// from a non-empty, vertex-bearing trail set: every trail was dangling,
// which leaves L3 with nothing to search (spec §7: GraphInconsistent is
// stage-fatal).
var errAllEdgesRejected = errors.New("assemble: every trail was rejected as dangling")

// Report accumulates per-step counts for the run summary (spec §7).
type Report struct {
	Stage           string
	VerticesMerged  int
	EdgesRejected   []string // trail uuids rejected as dangling
	ChainsMerged    int
	OverlapsDropped int
	Bridges         int
	Warnings        []string
}

func newReport(stage string) *Report { return &Report{Stage: stage} }

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Assembler runs the L2 steps against a configuration.
type Assembler struct {
	cfg config.L2

	// vertexIndex maps a node_tolerance_m grid cell to the merged vertex
	// seeded there by extractVertices; constructEdges consults it to find
	// the vertex closest to each trail endpoint (spec §4.4.2). Built once
	// per Assemble call and read-only afterward.
	vertexIndex map[[2]int64]*mergedVertex

	// trailsByUUID is the origin-trail lookup degree-2 merging and overlap
	// dedup use to compare name/surface attribute compatibility (spec
	// §4.4.3-4.4.4), keyed by Trail.UUID.String().
	trailsByUUID map[string]*core.Trail
}

// New builds an Assembler.
func New(cfg config.L2) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble runs every L2 step in spec order and returns the finalized
// graph plus one Report per step.
func (a *Assembler) Assemble(trails []*core.Trail) (*netgraph.Graph, []*Report, error) {
	var reports []*Report

	a.trailsByUUID = make(map[string]*core.Trail, len(trails))
	for _, tr := range trails {
		a.trailsByUUID[tr.UUID.String()] = tr
	}

	g, vertexRep, err := a.extractVertices(trails)
	reports = append(reports, vertexRep)
	if err != nil {
		return nil, reports, err
	}

	edgeRep, err := a.constructEdges(g, trails)
	reports = append(reports, edgeRep)
	if err != nil {
		return nil, reports, err
	}

	chainRep := a.mergeDegree2Chains(g)
	reports = append(reports, chainRep)

	overlapRep := a.deduplicateOverlaps(g)
	reports = append(reports, overlapRep)

	bridgeRep := a.bridgeComponents(g)
	reports = append(reports, bridgeRep)

	for _, e := range g.Edges() {
		_ = g.SetState(e.ID, netgraph.EdgeFinal)
	}

	return g, reports, nil
}

func stageErr(kind carterr.Kind, stage string, affected []string, cause error) error {
	return carterr.New(kind, stage, affected, cause)
}
