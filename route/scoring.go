package route

import (
	"sort"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// Scorer is spec §4.5.5's pluggable reranker: given a set of candidates,
// return a score per candidate in [0,1], preserving relative ordering
// consistency (a candidate scored higher by similarity/connectivity
// should not be scored lower than one that is strictly worse on every
// input dimension).
type Scorer interface {
	Score(candidates []*core.RouteRecommendation, pat core.RoutePattern) ([]float64, error)
}

// DefaultScorer implements the heuristic combination spec §4.5.5
// describes: similarity + connectivity_score, penalized for backtracking/
// overlap, with a diversity bonus for trail-count, each weighted by
// cfg.ScoringWeights and clamped to [0,1] after combination, as the
// Scorer contract requires.
type DefaultScorer struct {
	Weights config.ScoringWeights
}

// Score implements Scorer.
func (s DefaultScorer) Score(candidates []*core.RouteRecommendation, pat core.RoutePattern) ([]float64, error) {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		similarity := computeSimilarity(c.Metrics.DistanceKM, c.Metrics.GainM, pat)
		diversityBonus := diversityScore(c.Metrics.UniqueTrailCount, c.Metrics.TrailCount)
		backtrackPenalty := backtrackingFraction(c.Edges)
		overlapPenalty := maxOverlapFraction(c, candidates)

		weighted := s.Weights.Distance*similarity +
			s.Weights.Connectivity*c.Metrics.ConnectivityScore +
			s.Weights.Diversity*diversityBonus -
			s.Weights.Backtracking*backtrackPenalty -
			s.Weights.Overlap*overlapPenalty
		denom := s.Weights.Distance + s.Weights.Connectivity + s.Weights.Diversity +
			s.Weights.Backtracking + s.Weights.Overlap
		if denom > 0 {
			weighted /= denom
		}
		if weighted < 0 {
			weighted = 0
		}
		if weighted > 1 {
			weighted = 1
		}
		out[i] = weighted
	}
	return out, nil
}

// backtrackingFraction is the portion of a candidate's own edges visited
// more than once — a route that doubles back over the same edge scores
// worse here (spec §4.5.5's backtracking penalty input).
func backtrackingFraction(edges []netgraph.EdgeID) float64 {
	if len(edges) == 0 {
		return 0
	}
	counts := make(map[netgraph.EdgeID]int, len(edges))
	for _, e := range edges {
		counts[e]++
	}
	var repeated int
	for _, n := range counts {
		if n > 1 {
			repeated += n - 1
		}
	}
	return float64(repeated) / float64(len(edges))
}

// maxOverlapFraction is the largest edge-set overlap between c and any
// other candidate scored in the same batch (spec §4.5.5's overlap penalty
// input, the per-candidate analog of search_loop.go's pairwise
// overlapPercent filter).
func maxOverlapFraction(c *core.RouteRecommendation, batch []*core.RouteRecommendation) float64 {
	best := 0.0
	for _, o := range batch {
		if o == c {
			continue
		}
		if f := edgeOverlapFraction(c.Edges, o.Edges); f > best {
			best = f
		}
	}
	return best
}

// edgeOverlapFraction is the fraction of a's edges that also appear in b.
func edgeOverlapFraction(a, b []netgraph.EdgeID) float64 {
	if len(a) == 0 {
		return 0
	}
	bSet := make(map[netgraph.EdgeID]bool, len(b))
	for _, e := range b {
		bSet[e] = true
	}
	shared := 0
	for _, e := range a {
		if bSet[e] {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

// computeSimilarity implements spec §4.5.5's
// similarity = 1 - (w_d*Δd_rel + w_e*Δe_rel), clamped to [0,1]. Each
// delta is relative to the pattern's own target, and both weights are
// fixed at 0.5: config.ScoringWeights does not reach this function, and its
// Elevation weight is read only by config validation.
func computeSimilarity(distanceKM, gainM float64, pat core.RoutePattern) float64 {
	deltaD := relDelta(distanceKM, pat.TargetDistanceKM)
	deltaE := relDelta(gainM, pat.TargetElevationGainM)
	sim := 1 - (0.5*deltaD + 0.5*deltaE)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}

func relDelta(actual, target float64) float64 {
	const epsilon = 1e-6
	denom := target
	if denom < epsilon {
		denom = epsilon
	}
	delta := actual - target
	if delta < 0 {
		delta = -delta
	}
	return delta / denom
}

// diversityScore rewards routes that touch more distinct trails relative
// to their edge count (spec §4.5.5's "bonus for trail-count diversity").
func diversityScore(uniqueTrails, trailCount int) float64 {
	if trailCount == 0 {
		return 0
	}
	return float64(uniqueTrails) / float64(trailCount)
}

// gainRate is gain per kilometer (spec §4.5.5).
func gainRate(gainM, distanceKM float64) float64 {
	if distanceKM <= 0 {
		return 0
	}
	return gainM / distanceKM
}

// classifyDifficulty buckets a gain rate using the configured ascending
// thresholds: the last threshold whose bound the rate meets or exceeds
// wins (spec §4.5.5, "configurable thresholds").
func classifyDifficulty(rate float64, thresholds []config.DifficultyThreshold) core.Difficulty {
	sorted := append([]config.DifficultyThreshold(nil), thresholds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GainRateMPerKM < sorted[j].GainRateMPerKM })

	label := "unknown"
	for _, t := range sorted {
		if rate >= t.GainRateMPerKM {
			label = t.Label
		}
	}
	switch label {
	case "easy":
		return core.DifficultyEasy
	case "moderate":
		return core.DifficultyModerate
	case "hard":
		return core.DifficultyHard
	case "expert":
		return core.DifficultyExpert
	default:
		return core.DifficultyUnknown
	}
}

// estimatedTimeMinutes implements spec §4.5.5's Naismith-style formula:
// distance_km/avg_speed + gain_m/climb_rate, expressed in hours by the
// config and converted to minutes for RouteMetrics.EstTimeMinutes.
func estimatedTimeMinutes(distanceKM, gainM float64, tm config.TimeModel) float64 {
	hours := distanceKM/tm.AvgSpeedKMH + gainM/tm.ClimbRateMH
	return hours * 60
}

// score runs the configured scorer over candidates, falling back to the
// default heuristic scorer on ScorerUnavailable per spec §4.5 failure
// modes, and finishes each candidate's RouteMetrics (difficulty, gain
// rate, estimated time) plus its final [0,100] Score and Similarity.
func (gen *Generator) score(candidates []*core.RouteRecommendation, pat core.RoutePattern) ([]*core.RouteRecommendation, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scorer := gen.scorer
	weighted, err := scorer.Score(candidates, pat)
	if err != nil {
		gen.log.Warn().Err(err).Msg("route: configured scorer failed, falling back to heuristic scorer")
		fallback := DefaultScorer{Weights: gen.cfg.ScoringWeights}
		weighted, err = fallback.Score(candidates, pat)
		if err != nil {
			return nil, carterr.New(carterr.ScorerUnavailable, "route.score", []string{pat.Name}, err)
		}
	}

	for i, c := range candidates {
		c.Similarity = computeSimilarity(c.Metrics.DistanceKM, c.Metrics.GainM, pat)
		c.Metrics.GainRateMPerKM = gainRate(c.Metrics.GainM, c.Metrics.DistanceKM)
		c.Metrics.Difficulty = classifyDifficulty(c.Metrics.GainRateMPerKM, gen.cfg.DifficultyThresholds)
		c.Metrics.EstTimeMinutes = estimatedTimeMinutes(c.Metrics.DistanceKM, c.Metrics.GainM, gen.cfg.TimeModel)
		c.Score = weighted[i] * 100
	}
	return candidates, nil
}
