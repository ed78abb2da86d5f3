package route

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// seedVertices greedily thins the subnetwork's vertex set so that no two
// chosen seeds are closer than minSpacingM (spec §4.5.3: "spaced >=
// min_distance_between_routes_m apart"). Vertices are visited in ID order
// for determinism.
func seedVertices(g *netgraph.Graph, minSpacingM float64) []netgraph.VertexID {
	var chosen []netgraph.VertexID
	var chosenPts []geom.Point3
	for _, v := range g.Vertices() {
		tooClose := false
		for _, p := range chosenPts {
			if geom.PointDistanceMeters(p, v.Pos) < minSpacingM {
				tooClose = true
				break
			}
		}
		if !tooClose {
			chosen = append(chosen, v.ID)
			chosenPts = append(chosenPts, v.Pos)
		}
	}
	return chosen
}

// searchOutAndBack implements spec §4.5.3's out-and-back branch: each seed
// searches one-way to targets reached at half the pattern's target
// distance, then doubles the one-way distance, gain and loss for the
// round trip.
func (gen *Generator) searchOutAndBack(ctx context.Context, sub *netgraph.Graph, pat core.RoutePattern) ([]*core.RouteRecommendation, error) {
	seeds := seedVertices(sub, gen.cfg.MinDistanceBetweenRoutesM)
	oneWayTargetKM := pat.TargetDistanceKM / 2
	oneWayTargetGainM := pat.TargetElevationGainM / 2

	var out []*core.RouteRecommendation
	for _, src := range seeds {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		for _, dst := range sub.Vertices() {
			if dst.ID == src {
				continue
			}
			for _, tol := range gen.cfg.ToleranceLevels {
				if len(out) >= gen.cfg.MaxRoutesPerPattern {
					return out, nil
				}
				paths, err := kShortestPaths(sub, src, dst.ID, gen.cfg.MaxRoutesPerPattern)
				if err != nil {
					continue
				}
				matched := false
				for _, p := range paths {
					distKM, gainM, lossM, trailCount, uniq := aggregate(sub, p.edges)
					if !matchesAtLevel(distKM, gainM, oneWayTargetKM, oneWayTargetGainM, pat.TolerancePercent, tol) {
						continue
					}
					rt := 2 * distKM
					rec, err := core.NewRouteRecommendation(pat, p.edges)
					if err != nil {
						continue
					}
					rec.UUID = uuid.New()
					rec.Metrics = core.RouteMetrics{
						DistanceKM:       rt,
						GainM:            2 * gainM,
						LossM:            2 * lossM,
						TrailCount:       trailCount,
						UniqueTrailCount: uniq,
						ConnectivityScore: connectivityScore(sub, p.edges),
					}
					rec.Geometry = pathGeometry(sub, p.edges)
					out = append(out, rec)
					matched = true
				}
				// Widen to the next tolerance level only if this one found
				// nothing, per spec §4.5.3's "tried in increasing width".
				if matched {
					break
				}
			}
		}
	}
	return out, nil
}

// searchPointToPoint implements spec §4.5.3's point-to-point branch
// (lollipop is treated as point-to-point for search purposes; its
// "handle" shape is a scoring/labeling distinction, not a different
// search — spec.md leaves the distinction open).
func (gen *Generator) searchPointToPoint(ctx context.Context, sub *netgraph.Graph, pat core.RoutePattern) ([]*core.RouteRecommendation, error) {
	seeds := seedVertices(sub, gen.cfg.MinDistanceBetweenRoutesM)

	var out []*core.RouteRecommendation
	for _, src := range seeds {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		for _, dst := range sub.Vertices() {
			if dst.ID == src {
				continue
			}
			if len(out) >= gen.cfg.MaxRoutesPerPattern {
				return out, nil
			}
			for _, tol := range gen.cfg.ToleranceLevels {
				paths, err := kShortestPaths(sub, src, dst.ID, gen.cfg.MaxRoutesPerPattern)
				if err != nil {
					continue
				}
				matched := false
				for _, p := range paths {
					distKM, gainM, lossM, trailCount, uniq := aggregate(sub, p.edges)
					if !matchesAtLevel(distKM, gainM, pat.TargetDistanceKM, pat.TargetElevationGainM, pat.TolerancePercent, tol) {
						continue
					}
					rec, err := core.NewRouteRecommendation(pat, p.edges)
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
						ConnectivityScore: connectivityScore(sub, p.edges),
					}
					rec.Geometry = pathGeometry(sub, p.edges)
					out = append(out, rec)
					matched = true
				}
				if matched {
					break
				}
			}
		}
	}
	return out, nil
}
