package assemble

import (
	"sort"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// constructEdges implements spec §4.4.2: one Edge per conditioned trail,
// geometry unchanged, endpoints resolved to the merged vertices extraction
// seeded at this trail's own start/end (so the lookup always hits), then
// confirmed within edge_to_vertex_tolerance_m. A trail whose resolved
// endpoints coincide is rejected as a self-loop — loop trails are
// segmentized in L1 (spec §4.3.5) before L2 ever sees them, so a surviving
// self-loop here means the source trail never went through loop
// pre-split, which is a dangling-endpoint-shaped producer error, not a
// case L2 can repair.
//
// Complexity: O(n) trails, one grid lookup per endpoint.
func (a *Assembler) constructEdges(g *netgraph.Graph, trails []*core.Trail) (*Report, error) {
	rep := newReport("construct_edges")

	ordered := make([]*core.Trail, len(trails))
	copy(ordered, trails)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UUID.String() < ordered[j].UUID.String() })

	for _, tr := range ordered {
		start, err := geom.StartPoint(tr.Geometry)
		if err != nil {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: %v", tr.UUID, err)
			continue
		}
		end, err := geom.EndPoint(tr.Geometry)
		if err != nil {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: %v", tr.UUID, err)
			continue
		}

		srcID, ok := a.vertexFor(start)
		if !ok {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: no vertex near start", tr.UUID)
			continue
		}
		dstID, ok := a.vertexFor(end)
		if !ok {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: no vertex near end", tr.UUID)
			continue
		}

		srcV, _ := g.Vertex(srcID)
		dstV, _ := g.Vertex(dstID)
		if geom.PointDistanceMeters(srcV.Pos, start) > a.cfg.EdgeToVertexToleranceM {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: start beyond edge_to_vertex_tolerance_m", tr.UUID)
			continue
		}
		if geom.PointDistanceMeters(dstV.Pos, end) > a.cfg.EdgeToVertexToleranceM {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: end beyond edge_to_vertex_tolerance_m", tr.UUID)
			continue
		}

		if srcID == dstID {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: resolves to a self-loop (not segmentized in L1)", tr.UUID)
			continue
		}

		e, err := g.AddEdge(srcID, dstID, tr.Geometry, tr.UUID)
		if err != nil {
			rep.EdgesRejected = append(rep.EdgesRejected, tr.UUID.String())
			rep.warnf("trail %s: %v", tr.UUID, err)
			continue
		}
		e.GainM = tr.Elevation.GainM
		e.LossM = tr.Elevation.LossM
	}

	if g.VertexCount() > 0 && g.EdgeCount() == 0 && len(ordered) > 0 {
		return rep, stageErr(carterr.GraphInconsistent, "construct_edges", nil,
			errAllEdgesRejected)
	}
	return rep, nil
}
