// Package route implements L3 route generation (spec §4.5): subnetwork
// scheduling, k-shortest-paths search for out-and-back/point-to-point
// patterns, Hawick-style circuit enumeration for loops, scoring, and
// cross-pattern deduplication.
//
// Every search step is a pure function over a finalized *netgraph.Graph
// and a config.L3; runlifecycle is responsible for handing it the frozen
// L2 output (spec §5: "L2 completes ... before L3 starts").
package route

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// Report accumulates per-pattern counts for the run summary (spec §7).
type Report struct {
	Pattern              string
	SubnetworksProcessed int
	SubnetworksSkipped   []string // reasons, one per skipped subnetwork
	CandidatesFound      int
	CandidatesMatched    int
	CandidatesDeduped    int
	Warnings             []string
}

func newReport(pattern string) *Report { return &Report{Pattern: pattern} }

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Generator runs L3 route generation against a configuration.
type Generator struct {
	cfg    config.L3
	scorer Scorer
	log    zerolog.Logger
}

// New builds a Generator. scorer may be nil, in which case DefaultScorer
// is used (spec §4.5.5's pluggable scorer interface).
func New(cfg config.L3, scorer Scorer, log zerolog.Logger) *Generator {
	if scorer == nil {
		scorer = DefaultScorer{Weights: cfg.ScoringWeights}
	}
	return &Generator{cfg: cfg, scorer: scorer, log: log}
}

// Generate runs every configured pattern against g and returns the final,
// cross-pattern-deduplicated, sorted recommendation set plus one Report
// per pattern.
//
// Ordering: per spec §5, the result stream is sorted by
// (pattern_id, score desc, uuid asc) for determinism, regardless of the
// order subnetworks complete in.
func (gen *Generator) Generate(ctx context.Context, g *netgraph.Graph, patterns []core.RoutePattern) ([]*core.RouteRecommendation, []*Report, error) {
	subnets, skipped := partitionSubnetworks(g, gen.cfg.MinSubnetworkSize, gen.cfg.MaxSubnetworkSize)

	var all []*core.RouteRecommendation
	var reports []*Report

	for _, pat := range patterns {
		rep := newReport(pat.Name)
		rep.SubnetworksSkipped = append(rep.SubnetworksSkipped, skipped...)
		for _, reason := range skipped {
			rep.warnf("subnetwork skipped: %s", reason)
		}

		patCandidates, err := gen.searchSubnetworksConcurrently(ctx, subnets, pat, rep)
		if err != nil {
			return nil, reports, err
		}

		scored, err := gen.score(patCandidates, pat)
		if err != nil {
			return nil, reports, err
		}
		rep.CandidatesMatched = len(scored)

		deduped := dedupeFingerprints(scored)
		rep.CandidatesDeduped = len(patCandidates) - len(deduped)

		sort.Slice(deduped, func(i, j int) bool { return deduped[i].Score > deduped[j].Score })
		if len(deduped) > gen.cfg.MaxRoutesPerPattern {
			deduped = deduped[:gen.cfg.MaxRoutesPerPattern]
		}

		all = append(all, deduped...)
		reports = append(reports, rep)
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Pattern.Name != b.Pattern.Name {
			return a.Pattern.Name < b.Pattern.Name
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.UUID.String() < b.UUID.String()
	})

	return all, reports, nil
}

// searchSubnetworksConcurrently fans out pat's search across subnets, one
// goroutine per subnetwork, capped by cfg.MaxConcurrentSubnetworks (spec
// §4.5.2: subnetworks are independent search spaces and may run in
// parallel). A SubnetworkTooLarge error is recorded as a warning and
// skipped rather than aborting the pattern; any other error cancels the
// whole group.
func (gen *Generator) searchSubnetworksConcurrently(ctx context.Context, subnets []*netgraph.Graph, pat core.RoutePattern, rep *Report) ([]*core.RouteRecommendation, error) {
	g, gctx := errgroup.WithContext(ctx)
	if gen.cfg.MaxConcurrentSubnetworks > 0 {
		g.SetLimit(gen.cfg.MaxConcurrentSubnetworks)
	}

	var mu sync.Mutex
	var patCandidates []*core.RouteRecommendation

	for _, sub := range subnets {
		sub := sub
		g.Go(func() error {
			cands, err := gen.searchSubnetwork(gctx, sub, pat)
			if err != nil {
				var kindErr *carterr.CarthorseError
				if asCartErr(err, &kindErr) && kindErr.Kind == carterr.SubnetworkTooLarge {
					mu.Lock()
					rep.warnf("%v", err)
					mu.Unlock()
					return nil
				}
				return err
			}

			mu.Lock()
			rep.SubnetworksProcessed++
			rep.CandidatesFound += len(cands)
			patCandidates = append(patCandidates, cands...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, carterr.New(carterr.Cancelled, "route.Generate", []string{pat.Name}, ctx.Err())
		}
		return nil, err
	}
	return patCandidates, nil
}

func (gen *Generator) searchSubnetwork(ctx context.Context, sub *netgraph.Graph, pat core.RoutePattern) ([]*core.RouteRecommendation, error) {
	switch pat.Shape {
	case core.ShapeLoop:
		return gen.searchLoops(ctx, sub, pat)
	case core.ShapeOutAndBack:
		return gen.searchOutAndBack(ctx, sub, pat)
	case core.ShapePointToPoint, core.ShapeLollipop:
		return gen.searchPointToPoint(ctx, sub, pat)
	default:
		return nil, carterr.New(carterr.Internal, "route.searchSubnetwork", nil, fmt.Errorf("unknown shape %v", pat.Shape))
	}
}

func asCartErr(err error, out **carterr.CarthorseError) bool {
	ce, ok := err.(*carterr.CarthorseError)
	if ok {
		*out = ce
	}
	return ok
}
