package condition

import (
	"math"
	"sort"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// snapNode is one deduplicated intersection/endpoint location (spec
// §4.3.4 step 4): a snapped position and the set of trail indices whose
// detected intersection point mapped to it.
type snapNode struct {
	pos    geom.Point3
	trails map[int]bool
}

// SnapAndSplit is the central L1 algorithm (spec §4.3.4): densify, detect
// candidate intersections via the tolerance-pruned pair scan, snap them to
// a shared vertex set, then split every trail at each node uniquely
// assigned to it. Trails not involved in any intersection pass through
// unchanged with a nil parent_uuid.
func (c *Conditioner) SnapAndSplit(trails []*core.Trail) ([]*core.Trail, *Report, error) {
	rep := newReport("snap_and_split")
	t := c.cfg.IntersectionToleranceM
	if t <= 0 || len(trails) == 0 {
		return trails, rep, nil
	}

	densified := make([]geom.Line3, len(trails))
	for i, tr := range trails {
		densified[i] = geom.Segmentize(tr.Geometry, t)
	}

	var raw []geom.Point3
	rawOwners := make(map[int][]int) // index into raw -> trail indices touching it
	for i := 0; i < len(trails); i++ {
		for j := i + 1; j < len(trails); j++ {
			if !geom.DWithin(densified[i], densified[j], t) {
				continue
			}
			for _, p := range geom.Intersection(densified[i], densified[j]) {
				idx := len(raw)
				raw = append(raw, p)
				rawOwners[idx] = []int{i, j}
			}
		}
	}

	nodes := snapAndDedupe(raw, rawOwners, trails, t)

	replacedParents := make(map[int]bool)
	var newTrails []*core.Trail

	for i, tr := range trails {
		splitPoints := nodesForTrail(nodes, i, tr.Geometry, c.cfg.EndpointEpsilon, t)
		if len(splitPoints) == 0 {
			continue
		}

		children, err := splitSequentially(tr.Geometry, splitPoints, c.cfg.EndpointEpsilon)
		if err != nil || len(children) < 2 {
			if err != nil {
				rep.warnf("trail %s: %v", tr.UUID, err)
			}
			continue
		}

		children, err = mergeShortChildren(tr, children, c.cfg.MinTrailLengthM)
		if err != nil {
			rep.warnf("trail %s: merge-short-children: %v", tr.UUID, err)
			continue
		}
		if len(children) < 2 {
			continue
		}

		for _, geometry := range children {
			child, err := newChild(tr, geometry)
			if err != nil {
				rep.warnf("trail %s: child build: %v", tr.UUID, err)
				continue
			}
			newTrails = append(newTrails, child)
			rep.Splits++
		}
		replacedParents[i] = true
		rep.Replaced = append(rep.Replaced, tr.UUID.String())
	}

	out := make([]*core.Trail, 0, len(trails)+len(newTrails))
	for i, tr := range trails {
		if !replacedParents[i] {
			out = append(out, tr)
		}
	}
	out = append(out, newTrails...)

	return out, rep, nil
}

// snapAndDedupe implements steps 3-4: snap each raw point to the nearest
// trail endpoint within t (falling back to a grid cell of resolution t),
// then group by the resulting exact position.
func snapAndDedupe(raw []geom.Point3, owners map[int][]int, trails []*core.Trail, t float64) []*snapNode {
	var endpoints []geom.Point3
	for _, tr := range trails {
		if s, err := geom.StartPoint(tr.Geometry); err == nil {
			endpoints = append(endpoints, s)
		}
		if e, err := geom.EndPoint(tr.Geometry); err == nil {
			endpoints = append(endpoints, e)
		}
	}

	var nodes []*snapNode
	byKey := make(map[[2]int64]*snapNode)

	for idx, p := range raw {
		snapped := nearestWithin(endpoints, p, t)
		if !snapped.ok {
			snapped.point = geom.GridSnap(p, t)
		}

		key := geom.GridKey(snapped.point)
		node, ok := byKey[key]
		if !ok {
			node = &snapNode{pos: snapped.point, trails: map[int]bool{}}
			byKey[key] = node
			nodes = append(nodes, node)
		}
		for _, trailIdx := range owners[idx] {
			node.trails[trailIdx] = true
		}
	}

	return nodes
}

type nearestResult struct {
	point geom.Point3
	ok    bool
}

func nearestWithin(candidates []geom.Point3, p geom.Point3, t float64) nearestResult {
	best := math.Inf(1)
	var bestPoint geom.Point3
	found := false
	for _, c := range candidates {
		d := geom.PointDistanceMeters(c, p)
		if d <= t && d < best {
			best = d
			bestPoint = c
			found = true
		}
	}
	return nearestResult{point: bestPoint, ok: found}
}

// nodesForTrail returns, in line-locate order, the points trail idx
// should be split at: every node touching it whose projection onto its
// geometry is strictly interior (beyond endpointEpsilon) and which is not
// within t of another chosen point.
func nodesForTrail(nodes []*snapNode, idx int, line geom.Line3, endpointEpsilon, t float64) []geom.Point3 {
	type candidate struct {
		p    geom.Point3
		locT float64
	}
	var cands []candidate
	for _, n := range nodes {
		if !n.trails[idx] {
			continue
		}
		locT := geom.LineLocate(line, n.pos)
		if locT <= endpointEpsilon || locT >= 1-endpointEpsilon {
			continue
		}
		cands = append(cands, candidate{p: n.pos, locT: locT})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].locT < cands[j].locT })

	var kept []candidate
	for _, c := range cands {
		tooClose := false
		for _, k := range kept {
			if geom.PointDistanceMeters(k.p, c.p) < t {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c)
		}
	}

	out := make([]geom.Point3, len(kept))
	for i, c := range kept {
		out[i] = c.p
	}
	return out
}

// splitSequentially applies geom.Split at each point in order, each split
// operating on the remaining tail so earlier children are final as soon
// as produced. A point that turns out non-splittable (too close to the
// current remainder's endpoint after prior splits moved it) is skipped;
// skipped points are not returned or reported, so the caller cannot log
// them.
func splitSequentially(line geom.Line3, points []geom.Point3, endpointEpsilon float64) ([]geom.Line3, error) {
	var children []geom.Line3
	remainder := line
	for _, p := range points {
		head, tail, err := geom.Split(remainder, p, endpointEpsilon)
		if err != nil {
			continue
		}
		children = append(children, head)
		remainder = tail
	}
	children = append(children, remainder)
	return children, nil
}
