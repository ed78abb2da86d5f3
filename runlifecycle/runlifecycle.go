// Package runlifecycle exposes the controlling-process API of spec §6:
// Install, PrepareRegion, RunL1, RunL2, RunL3, Export, Cleanup. It is the
// only package that wires store, condition, assemble, route, and export
// together into one ordered pipeline run; each package above it stays
// independently testable as a pure transform over its own inputs.
//
// Stage boundaries are strict per spec §5: RunL1 must complete before
// RunL2 starts, RunL2 (including degree-2 merging and bridging) before
// RunL3. Run enforces this at runtime: each stage method returns an
// Internal error unless the previous stage has completed, and a stage
// cannot run twice.
package runlifecycle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shaydu/carthorse/assemble"
	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/condition"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/elevation"
	"github.com/shaydu/carthorse/export"
	"github.com/shaydu/carthorse/netgraph"
	"github.com/shaydu/carthorse/route"
	"github.com/shaydu/carthorse/store"
)

// ExitCode mirrors spec §6/§7's exit-code table: 0 success, nonzero
// stage-specific failure. A controlling CLI (out of scope per spec.md
// §1) maps these to process exit codes; the core only classifies.
type ExitCode int

const (
	ExitSuccess ExitCode = iota
	ExitValidation
	ExitNetworkEmpty
	ExitNoMatches
	ExitInternal
)

// Summary is the user-visible success/partial-success report spec §7
// requires: "success prints a summary with counts."
type Summary struct {
	TrailsIn         int
	TrailsOut        int
	Vertices         int
	Edges            int
	Recommendations  int
	ConditionReports []*condition.Report
	AssembleReports  []*assemble.Report
	RouteReports     []*route.Report
	Warnings         []string
}

// Run holds one pipeline run's state across stage calls: the staging
// workspace (the sole shared mutable resource, spec §5) plus the
// configuration and collaborators every stage needs. A Run is not safe
// for concurrent stage calls — stages are sequential by spec §5's
// ordering guarantee — but the workspace itself may be read
// concurrently by callers holding a snapshot.
type Run struct {
	cfg   config.Config
	elev  elevation.Provider
	log   zerolog.Logger

	ws     *store.Workspace
	graph  *netgraph.Graph
	routes []*core.RouteRecommendation

	l1Done bool
	l2Done bool
	l3Done bool
}

// Install validates cfg once before any workspace is touched, per spec
// §7's ConfigInvalid kind being surfaced "before a run starts."
func Install(cfg config.Config) error {
	return cfg.Validate()
}

// PrepareRegion opens a fresh staging workspace for cfg.Region (spec
// §4.2's open(region, options)) and returns a Run ready for RunL1.
// elev may be nil, defaulting to elevation.NullProvider{}. log may be the
// zero zerolog.Logger, which defaults to zerolog.Nop() (spec.md §9: "no
// hidden globals" — the logger is threaded through, never looked up from
// a package-level variable).
func PrepareRegion(cfg config.Config, opts store.Options, elev elevation.Provider, log zerolog.Logger) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if elev == nil {
		elev = elevation.NullProvider{}
	}

	ws, err := store.Open(cfg.Region, opts)
	if err != nil {
		return nil, carterr.New(carterr.Internal, "runlifecycle.PrepareRegion", nil, err)
	}

	return &Run{cfg: cfg, elev: elev, log: log, ws: ws}, nil
}

// Workspace exposes the run's staging workspace so a caller can insert
// the raw trail batch (spec §4.2's insert_trails) before calling RunL1.
func (r *Run) Workspace() *store.Workspace { return r.ws }

// RunL1 runs trail conditioning (spec §4.3) over every trail currently
// staged, atomically replaces the staged set with the conditioned result,
// and freezes the workspace's trail table — after RunL1, only L2/L3-
// derived tables may be written (spec §4.2's freeze()).
func (r *Run) RunL1(ctx context.Context) ([]*condition.Report, error) {
	if r.l1Done {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL1", nil, fmt.Errorf("L1 already ran for this workspace"))
	}

	trails, err := r.ws.AllTrails()
	if err != nil {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL1", nil, err)
	}
	if len(trails) == 0 {
		return nil, carterr.New(carterr.ValidationFailed, "runlifecycle.RunL1", nil, fmt.Errorf("no trails staged"))
	}

	conditioner := condition.New(r.cfg.L1, r.elev)
	conditioned, reports, err := conditioner.Run(trails)
	if err != nil {
		return reports, err
	}

	if err := r.ws.ReplaceAllTrails(conditioned); err != nil {
		return reports, carterr.New(carterr.Internal, "runlifecycle.RunL1", nil, err)
	}
	if err := r.ws.Freeze(); err != nil {
		return reports, carterr.New(carterr.Internal, "runlifecycle.RunL1", nil, err)
	}

	r.l1Done = true
	return reports, nil
}

// RunL2 assembles the routable network (spec §4.4) from the frozen L1
// output. It requires RunL1 to have completed (spec §5's strict stage
// ordering).
func (r *Run) RunL2(ctx context.Context) ([]*assemble.Report, error) {
	if !r.l1Done {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL2", nil, fmt.Errorf("L1 has not completed"))
	}
	if r.l2Done {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL2", nil, fmt.Errorf("L2 already ran for this workspace"))
	}

	trails, err := r.ws.AllTrails()
	if err != nil {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL2", nil, err)
	}

	assembler := assemble.New(r.cfg.L2)
	g, reports, err := assembler.Assemble(trails)
	if err != nil {
		return reports, err
	}

	r.graph = g
	r.l2Done = true
	return reports, nil
}

// RunL3 generates route recommendations (spec §4.5) for every configured
// pattern against the finalized L2 graph. It requires RunL2 to have
// completed.
func (r *Run) RunL3(ctx context.Context, scorer route.Scorer) ([]*route.Report, error) {
	if !r.l2Done {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL3", nil, fmt.Errorf("L2 has not completed"))
	}
	if r.l3Done {
		return nil, carterr.New(carterr.Internal, "runlifecycle.RunL3", nil, fmt.Errorf("L3 already ran for this workspace"))
	}
	if r.graph.EdgeCount() == 0 {
		return nil, carterr.New(carterr.GraphInconsistent, "runlifecycle.RunL3", nil, fmt.Errorf("network has no edges"))
	}

	patterns := make([]core.RoutePattern, 0, len(r.cfg.L3.Patterns))
	for _, p := range r.cfg.L3.Patterns {
		shape, err := parseShape(p.Shape)
		if err != nil {
			return nil, carterr.New(carterr.ConfigInvalid, "runlifecycle.RunL3", []string{p.Name}, err)
		}
		patterns = append(patterns, core.RoutePattern{
			Name:                 p.Name,
			TargetDistanceKM:     p.TargetDistanceKM,
			TargetElevationGainM: p.TargetElevationGainM,
			Shape:                shape,
			TolerancePercent:     p.TolerancePercent,
		})
	}

	gen := route.New(r.cfg.L3, scorer, r.log)
	recs, reports, err := gen.Generate(ctx, r.graph, patterns)
	if err != nil {
		return reports, err
	}

	r.routes = recs
	r.l3Done = true
	return reports, nil
}

// Export writes the run's finalized trails/vertices/edges/recommendations
// to sink via the given Exporter (spec §6). Callers may export after L2
// alone (recommendations will be empty) or after L3.
func (r *Run) Export(exporter export.Exporter, sink export.Sink) error {
	trails, err := r.ws.AllTrails()
	if err != nil {
		return carterr.New(carterr.ExporterFailed, "runlifecycle.Export", nil, err)
	}

	result := export.Result{
		Trails:          trails,
		Recommendations: r.routes,
	}
	if r.graph != nil {
		result.Vertices = r.graph.Vertices()
		result.Edges = r.graph.Edges()
	}

	if err := exporter.Export(result, sink); err != nil {
		return carterr.New(carterr.ExporterFailed, "runlifecycle.Export", nil, err)
	}
	return nil
}

// Summary reports the counts spec §7 requires for a success/partial-
// success report.
func (r *Run) Summary(condReports []*condition.Report, asmReports []*assemble.Report, routeReports []*route.Report, trailsIn int) Summary {
	s := Summary{
		TrailsIn:         trailsIn,
		ConditionReports: condReports,
		AssembleReports:  asmReports,
		RouteReports:     routeReports,
		Recommendations:  len(r.routes),
	}
	if trails, err := r.ws.AllTrails(); err == nil {
		s.TrailsOut = len(trails)
	}
	if r.graph != nil {
		s.Vertices = r.graph.VertexCount()
		s.Edges = r.graph.EdgeCount()
	}
	for _, rep := range condReports {
		s.Warnings = append(s.Warnings, rep.Warnings...)
	}
	for _, rep := range asmReports {
		s.Warnings = append(s.Warnings, rep.Warnings...)
	}
	for _, rep := range routeReports {
		s.Warnings = append(s.Warnings, rep.Warnings...)
	}
	return s
}

// Cleanup tears the workspace down (spec §4.2's drop()); all derived data
// is discarded. A run that wants to preserve the workspace for inspection
// after a fatal error (spec §7) should call Close instead.
func (r *Run) Cleanup() error {
	return r.ws.Drop()
}

// Close releases the workspace handle without deleting its backing file,
// used when a fatal error should leave the workspace intact for
// inspection (spec §7: "leave the workspace intact ... unless
// cleanup=true").
func (r *Run) Close() error {
	return r.ws.Close()
}

func parseShape(s string) (core.RouteShape, error) {
	switch s {
	case "loop":
		return core.ShapeLoop, nil
	case "out_and_back":
		return core.ShapeOutAndBack, nil
	case "point_to_point":
		return core.ShapePointToPoint, nil
	case "lollipop":
		return core.ShapeLollipop, nil
	default:
		return 0, fmt.Errorf("runlifecycle: unknown pattern shape %q", s)
	}
}
