package condition

import (
	"fmt"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

type endpointRef struct {
	trail *core.Trail
	point geom.Point3
	start bool
}

// GapFix emits at most one synthetic bridge trail per pair of distinct
// trails: the first endpoint pair, in scan order, whose separation falls in
// [min_gap_m, max_gap_m] (spec §4.3.3). The returned slice is trails plus any new bridges appended;
// bridges are tagged synthetic=true and named "bridge: <a> <-> <b>".
func (c *Conditioner) GapFix(trails []*core.Trail) ([]*core.Trail, *Report) {
	rep := newReport("gap_fix")
	if len(trails) == 0 {
		return trails, rep
	}

	endpoints := make([]endpointRef, 0, len(trails)*2)
	for _, t := range trails {
		start, err := geom.StartPoint(t.Geometry)
		if err != nil {
			continue
		}
		end, err := geom.EndPoint(t.Geometry)
		if err != nil {
			continue
		}
		endpoints = append(endpoints, endpointRef{t, start, true}, endpointRef{t, end, false})
	}

	bridged := make(map[[2]string]bool)
	out := append([]*core.Trail{}, trails...)

	for i := 0; i < len(endpoints); i++ {
		for j := i + 1; j < len(endpoints); j++ {
			e1, e2 := endpoints[i], endpoints[j]
			if e1.trail.UUID == e2.trail.UUID {
				continue
			}
			key := pairKey(e1.trail.UUID.String(), e2.trail.UUID.String())
			if bridged[key] {
				continue
			}
			dist := geom.PointDistanceMeters(e1.point, e2.point)
			if dist < c.cfg.MinGapM || dist > c.cfg.MaxGapM {
				continue
			}

			bridge, err := newBridgeTrail(e1, e2)
			if err != nil {
				rep.warnf("bridge %s<->%s: %v", e1.trail.UUID, e2.trail.UUID, err)
				continue
			}
			out = append(out, bridge)
			bridged[key] = true
			rep.Bridges++
		}
	}

	return out, rep
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func newBridgeTrail(e1, e2 endpointRef) (*core.Trail, error) {
	name := fmt.Sprintf("bridge: %s <-> %s", e1.trail.UUID, e2.trail.UUID)
	region := e1.trail.Region
	line := geom.MakeLine([]geom.Point3{e1.point, e2.point})
	t, err := core.NewTrail(name, region, line)
	if err != nil {
		return nil, err
	}
	t.Tags = core.TagBag{"synthetic": "true"}
	return t, nil
}
