package condition

import (
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// PreSplitLoops segmentizes every trail whose endpoints coincide into at
// least loop_min_segments routable edges (spec §4.3.5), so later graph
// search never has to treat a closed trail as a self-loop edge.
func (c *Conditioner) PreSplitLoops(trails []*core.Trail) ([]*core.Trail, *Report, error) {
	rep := newReport("pre_split_loops")
	n := c.cfg.LoopMinSegments
	if n < 2 {
		n = 2
	}

	replaced := make(map[int]bool)
	var newTrails []*core.Trail

	for i, tr := range trails {
		if !isLoop(tr.Geometry, c.cfg.IntersectionToleranceM) {
			continue
		}

		points := evenlySpacedInteriorPoints(tr.Geometry, n)
		if len(points) == 0 {
			continue
		}

		children, err := splitSequentially(tr.Geometry, points, c.cfg.EndpointEpsilon)
		if err != nil || len(children) < 2 {
			if err != nil {
				rep.warnf("loop %s: %v", tr.UUID, err)
			}
			continue
		}
		children, err = mergeShortChildren(tr, children, c.cfg.MinTrailLengthM)
		if err != nil || len(children) < 2 {
			continue
		}

		for _, geometry := range children {
			child, err := newChild(tr, geometry)
			if err != nil {
				rep.warnf("loop %s: child build: %v", tr.UUID, err)
				continue
			}
			newTrails = append(newTrails, child)
			rep.Splits++
		}
		replaced[i] = true
		rep.Replaced = append(rep.Replaced, tr.UUID.String())
	}

	out := make([]*core.Trail, 0, len(trails)+len(newTrails))
	for i, tr := range trails {
		if !replaced[i] {
			out = append(out, tr)
		}
	}
	out = append(out, newTrails...)

	return out, rep, nil
}

func isLoop(line geom.Line3, tolM float64) bool {
	start, err := geom.StartPoint(line)
	if err != nil {
		return false
	}
	end, err := geom.EndPoint(line)
	if err != nil {
		return false
	}
	return geom.PointDistanceMeters(start, end) <= tolM
}

// evenlySpacedInteriorPoints samples n-1 points at fractions 1/n..(n-1)/n
// along line's arc length, giving n spans once split sequentially.
func evenlySpacedInteriorPoints(line geom.Line3, n int) []geom.Point3 {
	dense := geom.Segmentize(line, geom.LengthMeters(line)/float64(n*4+1))
	pts := dense.Points
	if len(pts) < 2 {
		return nil
	}
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + geom.PointDistanceMeters(pts[i-1], pts[i])
	}
	total := cum[len(cum)-1]
	if total <= 0 {
		return nil
	}

	var out []geom.Point3
	for k := 1; k < n; k++ {
		target := total * float64(k) / float64(n)
		idx := 0
		for idx < len(cum)-1 && cum[idx+1] < target {
			idx++
		}
		out = append(out, pts[idx])
	}
	return out
}
