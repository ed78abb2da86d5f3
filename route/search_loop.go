package route

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// searchLoops implements spec §4.5.4: enumerate simple circuits
// (Hawick-style), rank by total length, filter by the pattern's
// distance/elevation window, and enforce trail_count/backtracking/overlap
// bounds. maxLenKM widens per tolerance level to bound the otherwise-
// exponential enumeration; matching against the resulting candidates uses
// the same matchesAtLevel tolerance model the linear searches use.
func (gen *Generator) searchLoops(ctx context.Context, sub *netgraph.Graph, pat core.RoutePattern) ([]*core.RouteRecommendation, error) {
	var candidates []circuit
	var selected config.ToleranceLevel
	for _, tol := range gen.cfg.ToleranceLevels {
		distPct := tol.DistancePct
		if patFraction := pat.TolerancePercent / 100; patFraction > distPct {
			distPct = patFraction
		}
		maxLenKM := pat.TargetDistanceKM * (1 + distPct)
		candidates = hawickCircuits(sub, maxLenKM)
		selected = tol
		if len(candidates) > 0 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	var matched []*core.RouteRecommendation
	for _, c := range candidates {
		distKM, gainM, lossM, trailCount, uniq := aggregate(sub, c.edges)
		if !matchesAtLevel(distKM, gainM, pat.TargetDistanceKM, pat.TargetElevationGainM, pat.TolerancePercent, selected) {
			continue
		}
		if trailCount < gen.cfg.MinTrailCount {
			continue
		}

		rec, err := core.NewRouteRecommendation(pat, c.edges)
		if err != nil {
			continue
		}
		rec.UUID = uuid.New()
		rec.Metrics = core.RouteMetrics{
			DistanceKM:        distKM,
			GainM:             gainM,
			LossM:             lossM,
			TrailCount:        trailCount,
			UniqueTrailCount:  uniq,
			ConnectivityScore: connectivityScore(sub, c.edges),
		}
		rec.Geometry = pathGeometry(sub, c.edges)
		matched = append(matched, rec)
	}

	// rank by total length, shortest first, so the overlap filter below
	// keeps the shorter of two overlapping loops.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Metrics.DistanceKM < matched[j].Metrics.DistanceKM
	})

	// overlap filter (§4.5.4): drop later candidates whose shared edge
	// length with an already-kept candidate exceeds max_loop_overlap_percent.
	var kept []*core.RouteRecommendation
	for _, cand := range matched {
		overlaps := false
		for _, k := range kept {
			if overlapPercent(sub, cand.Edges, k.Edges) > gen.cfg.MaxLoopOverlapPercent {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, cand)
		}
	}
	return kept, nil
}

// overlapPercent is the fraction of a's edge length shared with b,
// measured by common edge ids (spec §4.5.4: "measured by shared edge
// length between two candidate loops").
func overlapPercent(g *netgraph.Graph, a, b []netgraph.EdgeID) float64 {
	bSet := make(map[netgraph.EdgeID]bool, len(b))
	for _, eid := range b {
		bSet[eid] = true
	}
	var totalLen, sharedLen float64
	for _, eid := range a {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		totalLen += e.LengthKM
		if bSet[eid] {
			sharedLen += e.LengthKM
		}
	}
	if totalLen == 0 {
		return 0
	}
	return sharedLen / totalLen * 100
}
