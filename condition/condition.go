// Package condition implements L1 trail conditioning (spec §4.3):
// validation and cleanup, deduplication, gap fixing, the snap-and-split
// intersection engine, and loop pre-splitting. Every step is a pure
// function over a []*core.Trail batch; nothing here writes to the staging
// workspace. runlifecycle.RunL1 runs the whole sequence and writes the
// result back with a single store.Workspace.ReplaceAllTrails call, so a
// failing step leaves the staged trails untouched.
package condition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/elevation"
	"github.com/shaydu/carthorse/geom"
)

// Failure modes named in spec §4.3.4/§4.3.5: a split that would collapse
// to a zero-length child, and a loop whose only intersection point is
// both its own endpoints (handled instead by PreSplitLoops).
var (
	ErrSplitDegenerate = errors.New("condition: split produced a zero-length child")
	ErrUnsplittableLoop = errors.New("condition: point is both endpoints of a closed trail")
)

// Report accumulates what one conditioning step did, for the run summary
// spec §7 requires ("success prints a summary with counts").
type Report struct {
	Stage      string
	Dropped    []string // trail uuids removed
	Replaced   []string // parent trail uuids replaced by children
	Merged     int       // duplicate pairs merged
	Bridges    int       // synthetic bridge trails inserted
	Splits     int       // split points applied
	Warnings   []string
}

func newReport(stage string) *Report { return &Report{Stage: stage} }

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Conditioner runs the L1 steps against a given configuration and
// elevation source.
type Conditioner struct {
	cfg  config.L1
	elev elevation.Provider
}

// New builds a Conditioner. elev may be elevation.NullProvider{} when no
// real elevation source is configured.
func New(cfg config.L1, elev elevation.Provider) *Conditioner {
	return &Conditioner{cfg: cfg, elev: elev}
}

// Run applies every L1 step in spec order and returns the conditioned
// trail set plus one Report per step.
func (c *Conditioner) Run(trails []*core.Trail) ([]*core.Trail, []*Report, error) {
	var reports []*Report

	cleaned, rep := c.ValidateAndClean(trails)
	reports = append(reports, rep)

	deduped, rep := c.Deduplicate(cleaned)
	reports = append(reports, rep)

	bridged, rep := c.GapFix(deduped)
	reports = append(reports, rep)

	split, rep, err := c.SnapAndSplit(bridged)
	reports = append(reports, rep)
	if err != nil {
		return nil, reports, err
	}

	looped, rep, err := c.PreSplitLoops(split)
	reports = append(reports, rep)
	if err != nil {
		return nil, reports, err
	}

	return looped, reports, nil
}

func cloneAttributes(dst, src *core.Trail) {
	dst.Surface = src.Surface
	dst.TrailType = src.TrailType
	dst.Difficulty = src.Difficulty
	dst.Tags = src.Tags.Clone()
}

// newChild builds a child trail for a split parent: fresh uuid,
// parent_uuid set, attributes copied, bbox/length/elevation recomputed by
// core.NewTrail from the child's own geometry.
func newChild(parent *core.Trail, geometry geom.Line3) (*core.Trail, error) {
	child, err := core.NewTrail(parent.Name, parent.Region, geometry)
	if err != nil {
		return nil, err
	}
	cloneAttributes(child, parent)
	pid := parent.UUID
	child.ParentUUID = &pid
	return child, nil
}

// mergeShortChildren concatenates any child shorter than minLenM with an
// adjacent child (spec §4.3.4: "children shorter than this are merged
// with a neighbor child before insert"), repeating until every remaining
// child clears the floor or only one child is left.
func mergeShortChildren(parent *core.Trail, segments []geom.Line3, minLenM float64) ([]geom.Line3, error) {
	for {
		if len(segments) <= 1 {
			return segments, nil
		}
		shortIdx := -1
		for i, s := range segments {
			if geom.LengthMeters(s) < minLenM {
				shortIdx = i
				break
			}
		}
		if shortIdx == -1 {
			return segments, nil
		}
		neighbor := shortIdx + 1
		if shortIdx == len(segments)-1 {
			neighbor = shortIdx - 1
		}
		merged, err := concatLines(segments, shortIdx, neighbor)
		if err != nil {
			return nil, err
		}
		lo, hi := shortIdx, neighbor
		if lo > hi {
			lo, hi = hi, lo
		}
		next := append([]geom.Line3{}, segments[:lo]...)
		next = append(next, merged)
		next = append(next, segments[hi+1:]...)
		segments = next
	}
}

func concatLines(segments []geom.Line3, a, b int) (geom.Line3, error) {
	first, second := segments[a], segments[b]
	if a > b {
		first, second = second, first
	}
	pts := append(append([]geom.Point3{}, first.Points...), second.Points[1:]...)
	if len(pts) < 2 {
		return geom.Line3{}, ErrSplitDegenerate
	}
	return geom.Line3{Points: pts}, nil
}

func sortByUUID(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func stageErr(kind carterr.Kind, stage string, affected []string, cause error) error {
	return carterr.New(kind, stage, affected, cause)
}
