// Package config holds the tunable thresholds and tolerances spec §6 lists
// by layer (L1 trail conditioning, L2 network assembly, L3 route
// generation). A Config is decoded from YAML by a controlling process
// (out of scope per spec.md §1) and validated once, before a run starts,
// by Validate.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shaydu/carthorse/carterr"
)

// L1 groups spec §4.3's trail-conditioning thresholds.
type L1 struct {
	MinTrailLengthM       float64 `yaml:"min_trail_length_m"`
	IntersectionToleranceM float64 `yaml:"intersection_tolerance_m"`
	EndpointEpsilon       float64 `yaml:"endpoint_epsilon"`
	MinGapM               float64 `yaml:"min_gap_m"`
	MaxGapM               float64 `yaml:"max_gap_m"`
	OverlapThreshold      float64 `yaml:"overlap_threshold"`
	DistanceThresholdM    float64 `yaml:"distance_threshold"`
	LoopMinSegments       int     `yaml:"loop_min_segments"`
}

// L2 groups spec §4.4's network-assembly thresholds.
type L2 struct {
	NodeToleranceM            float64 `yaml:"node_tolerance_m"`
	EdgeToVertexToleranceM    float64 `yaml:"edge_to_vertex_tolerance_m"`
	SpatialToleranceM         float64 `yaml:"spatial_tolerance_m"`
	Degree2MergeToleranceM    float64 `yaml:"degree2_merge_tolerance_m"`
	EdgeBridgingToleranceM    float64 `yaml:"edge_bridging_tolerance_m"`
	ShortConnectorMaxLengthM  float64 `yaml:"short_connector_max_length_m"`
	SimplifyToleranceDeg      float64 `yaml:"simplify_tolerance_deg"`
	SimplifyMinPoints         int     `yaml:"simplify_min_points"`
	Force3D                   bool    `yaml:"force_3d"`
}

// ScoringWeights are the §4.5.5 weights for similarity/connectivity/
// diversity combination. They need not sum to 1; Validate only rejects
// negative weights.
type ScoringWeights struct {
	Distance     float64 `yaml:"distance"`
	Elevation    float64 `yaml:"elevation"`
	Connectivity float64 `yaml:"connectivity"`
	Diversity    float64 `yaml:"diversity"`
	Backtracking float64 `yaml:"backtracking"`
	Overlap      float64 `yaml:"overlap"`
}

// TimeModel parameterizes §4.5.5's Naismith-style estimated-time formula:
// estimated_time_hours = distance_km/avg_speed + gain_m/climb_rate.
type TimeModel struct {
	AvgSpeedKMH float64 `yaml:"avg_speed"`
	ClimbRateMH float64 `yaml:"climb_rate"`
}

// DifficultyThreshold maps a gain_rate (m of gain per km) lower bound to a
// difficulty label; thresholds are evaluated in ascending order and the
// last one whose bound the candidate's gain_rate meets or exceeds wins.
type DifficultyThreshold struct {
	Label        string  `yaml:"label"`
	GainRateMPerKM float64 `yaml:"gain_rate_m_per_km"`
}

// L3 groups spec §4.5's route-generation thresholds and the pattern list
// a run is asked to search for.
type L3 struct {
	Patterns                  []PatternSpec         `yaml:"patterns"`
	MaxRoutesPerPattern       int                   `yaml:"max_routes_per_pattern"`
	MinDistanceBetweenRoutesM float64               `yaml:"min_distance_between_routes_m"`
	MaxLoopOverlapPercent     float64               `yaml:"max_loop_overlap_percent"`
	MaxBacktrackingPercent    float64               `yaml:"max_backtracking_percent"`
	MinTrailCount             int                   `yaml:"min_trail_count"`
	MaxSubnetworkSize         int                   `yaml:"max_subnetwork_size"`
	MinSubnetworkSize         int                   `yaml:"min_subnetwork_size"`
	ToleranceLevels           []ToleranceLevel      `yaml:"tolerance_levels"`
	ScoringWeights            ScoringWeights        `yaml:"scoring_weights"`
	DifficultyThresholds      []DifficultyThreshold `yaml:"difficulty_thresholds"`
	TimeModel                 TimeModel             `yaml:"time_model"`

	// MaxConcurrentSubnetworks bounds how many subnetworks a single
	// pattern's search fans out across at once (spec §4.5.2's subnetwork
	// scheduling). 0 or negative means unbounded.
	MaxConcurrentSubnetworks int `yaml:"max_concurrent_subnetworks"`
}

// PatternSpec names one target route pattern: a shape plus a target
// distance/elevation and the tolerance a candidate may deviate by before
// widening to the next ToleranceLevel.
type PatternSpec struct {
	Name                 string  `yaml:"name"`
	Shape                string  `yaml:"shape"` // loop | out_and_back | point_to_point | lollipop
	TargetDistanceKM     float64 `yaml:"target_distance_km"`
	TargetElevationGainM float64 `yaml:"target_elevation_gain_m"`

	// TolerancePercent is the pattern's own acceptance slack (spec §3's
	// RoutePattern.tolerance_percent), expressed in percent (e.g. 20 for
	// 20%). It is a floor under the widening tolerance_levels search, not
	// a substitute for it — see route.matchesAtLevel.
	TolerancePercent float64 `yaml:"tolerance_percent"`
}

// ToleranceLevel is one widening step of §4.5.3's "tried in increasing
// width (e.g. strict -> loose)" search.
type ToleranceLevel struct {
	Name         string  `yaml:"name"`
	DistancePct  float64 `yaml:"distance_pct"`
	ElevationPct float64 `yaml:"elevation_pct"`
}

// Config is the full set of options a controlling process decodes from
// YAML and passes to runlifecycle.
type Config struct {
	Region string `yaml:"region"`
	L1     L1     `yaml:"l1"`
	L2     L2     `yaml:"l2"`
	L3     L3     `yaml:"l3"`
}

// Default returns a Config populated with the thresholds spec.md's
// examples and testable properties use throughout, so a caller that only
// wants to override a handful of fields can start from a complete,
// internally consistent baseline.
func Default() Config {
	return Config{
		L1: L1{
			MinTrailLengthM:        5,
			IntersectionToleranceM: 3,
			EndpointEpsilon:        0.01,
			MinGapM:                1,
			MaxGapM:                15,
			OverlapThreshold:       0.8,
			DistanceThresholdM:     5,
			LoopMinSegments:        4,
		},
		L2: L2{
			NodeToleranceM:           3,
			EdgeToVertexToleranceM:   3,
			SpatialToleranceM:        3,
			Degree2MergeToleranceM:   2,
			EdgeBridgingToleranceM:   25,
			ShortConnectorMaxLengthM: 25,
			SimplifyToleranceDeg:     0,
			SimplifyMinPoints:        2,
			Force3D:                  false,
		},
		L3: L3{
			MaxRoutesPerPattern:       10,
			MinDistanceBetweenRoutesM: 200,
			MaxLoopOverlapPercent:     40,
			MaxBacktrackingPercent:    20,
			MinTrailCount:             2,
			MaxSubnetworkSize:         50000,
			MinSubnetworkSize:         3,
			ToleranceLevels: []ToleranceLevel{
				{Name: "strict", DistancePct: 0.1, ElevationPct: 0.15},
				{Name: "loose", DistancePct: 0.25, ElevationPct: 0.35},
			},
			ScoringWeights: ScoringWeights{Distance: 0.4, Elevation: 0.2, Connectivity: 0.2, Diversity: 0.1, Backtracking: 0.05, Overlap: 0.05},
			DifficultyThresholds: []DifficultyThreshold{
				{Label: "easy", GainRateMPerKM: 0},
				{Label: "moderate", GainRateMPerKM: 20},
				{Label: "hard", GainRateMPerKM: 40},
				{Label: "expert", GainRateMPerKM: 70},
			},
			TimeModel:                TimeModel{AvgSpeedKMH: 4.5, ClimbRateMH: 600},
			MaxConcurrentSubnetworks: 4,
		},
	}
}

// Load decodes a YAML document into a Config seeded with Default's
// values, so a controlling process only needs to set the fields it wants
// to override (spec §6: "decoded from YAML by a controlling process").
// It does not call Validate — callers should do that once before
// PrepareRegion, per §7's "ConfigInvalid surfaced before a run starts."
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate turns the closed-set tolerance/threshold relationships §7's
// ConfigInvalid kind is meant for into a single error before a run
// touches the workspace, rather than failing partway through a stage.
func (c Config) Validate() error {
	var bad []string
	check := func(cond bool, msg string) {
		if !cond {
			bad = append(bad, msg)
		}
	}

	check(c.Region != "", "region must not be empty")
	check(c.L1.MinTrailLengthM > 0, "l1.min_trail_length_m must be > 0")
	check(c.L1.IntersectionToleranceM > 0, "l1.intersection_tolerance_m must be > 0")
	check(c.L1.EndpointEpsilon > 0 && c.L1.EndpointEpsilon < 0.5, "l1.endpoint_epsilon must be in (0, 0.5)")
	check(c.L1.MinGapM >= 0, "l1.min_gap_m must be >= 0")
	check(c.L1.MaxGapM > c.L1.MinGapM, "l1.max_gap_m must be > l1.min_gap_m")
	check(c.L1.OverlapThreshold > 0 && c.L1.OverlapThreshold <= 1, "l1.overlap_threshold must be in (0, 1]")
	check(c.L1.DistanceThresholdM > 0, "l1.distance_threshold must be > 0")
	check(c.L1.LoopMinSegments >= 2, "l1.loop_min_segments must be >= 2")

	check(c.L2.NodeToleranceM > 0, "l2.node_tolerance_m must be > 0")
	check(c.L2.EdgeToVertexToleranceM > 0, "l2.edge_to_vertex_tolerance_m must be > 0")
	check(c.L2.SpatialToleranceM > 0, "l2.spatial_tolerance_m must be > 0")
	check(c.L2.Degree2MergeToleranceM > 0, "l2.degree2_merge_tolerance_m must be > 0")
	check(c.L2.EdgeBridgingToleranceM >= 0, "l2.edge_bridging_tolerance_m must be >= 0")
	check(c.L2.ShortConnectorMaxLengthM >= 0, "l2.short_connector_max_length_m must be >= 0")
	check(c.L2.SimplifyMinPoints >= 2, "l2.simplify_min_points must be >= 2")

	check(c.L3.MaxRoutesPerPattern > 0, "l3.max_routes_per_pattern must be > 0")
	check(c.L3.MinDistanceBetweenRoutesM >= 0, "l3.min_distance_between_routes_m must be >= 0")
	check(c.L3.MaxLoopOverlapPercent >= 0 && c.L3.MaxLoopOverlapPercent <= 100, "l3.max_loop_overlap_percent must be in [0, 100]")
	check(c.L3.MaxBacktrackingPercent >= 0 && c.L3.MaxBacktrackingPercent <= 100, "l3.max_backtracking_percent must be in [0, 100]")
	check(c.L3.MinTrailCount >= 1, "l3.min_trail_count must be >= 1")
	check(c.L3.MinSubnetworkSize >= 1, "l3.min_subnetwork_size must be >= 1")
	check(c.L3.MaxSubnetworkSize > c.L3.MinSubnetworkSize, "l3.max_subnetwork_size must be > l3.min_subnetwork_size")
	check(len(c.L3.ToleranceLevels) > 0, "l3.tolerance_levels must not be empty")
	check(c.L3.ScoringWeights.Distance >= 0 && c.L3.ScoringWeights.Elevation >= 0 &&
		c.L3.ScoringWeights.Connectivity >= 0 && c.L3.ScoringWeights.Diversity >= 0 &&
		c.L3.ScoringWeights.Backtracking >= 0 && c.L3.ScoringWeights.Overlap >= 0,
		"l3.scoring_weights must all be >= 0")
	check(c.L3.TimeModel.AvgSpeedKMH > 0, "l3.time_model.avg_speed must be > 0")
	check(c.L3.TimeModel.ClimbRateMH > 0, "l3.time_model.climb_rate must be > 0")
	for _, p := range c.L3.Patterns {
		switch p.Shape {
		case "loop", "out_and_back", "point_to_point", "lollipop":
		default:
			bad = append(bad, fmt.Sprintf("l3.patterns[%q]: unknown shape %q", p.Name, p.Shape))
		}
		check(p.TargetDistanceKM > 0, fmt.Sprintf("l3.patterns[%q]: target_distance_km must be > 0", p.Name))
		check(p.TolerancePercent >= 0 && p.TolerancePercent <= 100, fmt.Sprintf("l3.patterns[%q]: tolerance_percent must be in [0, 100]", p.Name))
	}

	if len(bad) == 0 {
		return nil
	}
	return carterr.New(carterr.ConfigInvalid, "config.Validate", nil, fmt.Errorf("%d invalid setting(s): %v", len(bad), bad))
}
