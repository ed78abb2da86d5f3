package assemble

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// mergedVertex accumulates every trail endpoint snapped onto one grid cell
// (spec §4.4.1's "grid snap as a deterministic merge key").
type mergedVertex struct {
	id     netgraph.VertexID
	pos    geom.Point3
	trails map[string]bool // trail uuid strings, for the intersection/endpoint kind test
}

// endpointRef is one trail endpoint awaiting vertex assignment.
type endpointRef struct {
	trailIdx int
	isStart  bool
	pos      geom.Point3
}

// extractVertices implements spec §4.4.1: a candidate vertex per trail
// endpoint, merged by grid-snap at node_tolerance_m, with the merged
// vertex's kind set to intersection iff >=2 distinct trails reference it.
//
// Complexity: O(n) endpoints against a grid-keyed map; ties in which
// candidate seeds a cell are broken by endpoint processing order
// (trails sorted by uuid, start before end), keeping the result
// deterministic across runs (spec §5).
func (a *Assembler) extractVertices(trails []*core.Trail) (*netgraph.Graph, *Report, error) {
	rep := newReport("extract_vertices")
	g := netgraph.NewGraph()

	ordered := make([]*core.Trail, len(trails))
	copy(ordered, trails)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UUID.String() < ordered[j].UUID.String() })

	byKey := make(map[[2]int64]*mergedVertex)
	var merged []*mergedVertex

	assign := func(pos geom.Point3, trailUUID string) *mergedVertex {
		snapped := geom.GridSnap(pos, a.cfg.NodeToleranceM)
		key := geom.GridKey(snapped)
		mv, ok := byKey[key]
		if !ok {
			mv = &mergedVertex{pos: snapped, trails: map[string]bool{}}
			byKey[key] = mv
			merged = append(merged, mv)
		}
		mv.trails[trailUUID] = true
		return mv
	}

	for _, tr := range ordered {
		if s, err := geom.StartPoint(tr.Geometry); err == nil {
			assign(s, tr.UUID.String())
		} else {
			rep.warnf("trail %s: %v", tr.UUID, err)
		}
		if e, err := geom.EndPoint(tr.Geometry); err == nil {
			assign(e, tr.UUID.String())
		} else {
			rep.warnf("trail %s: %v", tr.UUID, err)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].pos.Lng != merged[j].pos.Lng {
			return merged[i].pos.Lng < merged[j].pos.Lng
		}
		return merged[i].pos.Lat < merged[j].pos.Lat
	})

	for _, mv := range merged {
		kind := netgraph.KindEndpoint
		if len(mv.trails) >= 2 {
			kind = netgraph.KindIntersection
		}
		v := g.AddVertex(mv.pos, kind)
		mv.id = v.ID
		var uuids []string
		for u := range mv.trails {
			uuids = append(uuids, u)
		}
		sort.Strings(uuids)
		v.ConnectedTrails = connectedTrailUUIDs(uuids)
	}

	rep.VerticesMerged = len(merged)
	a.vertexIndex = byKey
	return g, rep, nil
}

// connectedTrailUUIDs parses a sorted set of uuid strings back into
// uuid.UUID values for Vertex.ConnectedTrails. Parse failures are
// impossible here (every string came from an existing Trail.UUID) but are
// skipped defensively rather than panicking.
func connectedTrailUUIDs(uuids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(uuids))
	for _, s := range uuids {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// vertexFor returns the merged vertex id whose grid cell contains pos,
// used by edge construction to look up the vertex nearest a trail
// endpoint without re-scanning every vertex.
func (a *Assembler) vertexFor(pos geom.Point3) (netgraph.VertexID, bool) {
	key := geom.GridKey(geom.GridSnap(pos, a.cfg.NodeToleranceM))
	mv, ok := a.vertexIndex[key]
	if !ok {
		return 0, false
	}
	return mv.id, true
}
