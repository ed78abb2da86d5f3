package condition

import (
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// ValidateAndClean drops trails with invalid geometry, sub-floor length,
// or a missing name (spec §4.3.1's "missing required attributes"), and
// fills in elevation for any 2D trail from the configured provider,
// letting Trail.SetGeometry recompute stats from the resulting 3D line.
func (c *Conditioner) ValidateAndClean(trails []*core.Trail) ([]*core.Trail, *Report) {
	rep := newReport("validate_and_clean")
	out := make([]*core.Trail, 0, len(trails))

	for _, t := range trails {
		if !geom.IsValid(t.Geometry) {
			rep.Dropped = append(rep.Dropped, t.UUID.String())
			rep.warnf("trail %s: invalid geometry", t.UUID)
			continue
		}
		if t.LengthKM*1000 < c.cfg.MinTrailLengthM {
			rep.Dropped = append(rep.Dropped, t.UUID.String())
			rep.warnf("trail %s: length %.1fm below floor %.1fm", t.UUID, t.LengthKM*1000, c.cfg.MinTrailLengthM)
			continue
		}
		if t.Name == "" {
			rep.Dropped = append(rep.Dropped, t.UUID.String())
			rep.warnf("trail %s: missing name", t.UUID)
			continue
		}

		if !t.Geometry.Is3D() {
			elevated := c.elevate(t.Geometry)
			if elevated.Is3D() {
				if err := t.SetGeometry(elevated); err != nil {
					rep.Dropped = append(rep.Dropped, t.UUID.String())
					rep.warnf("trail %s: elevation recompute failed: %v", t.UUID, err)
					continue
				}
			}
		} else if !t.Elevation.Valid() {
			if err := t.SetGeometry(t.Geometry); err != nil {
				rep.Dropped = append(rep.Dropped, t.UUID.String())
				rep.warnf("trail %s: inconsistent elevation stats, recompute failed: %v", t.UUID, err)
				continue
			}
		}

		out = append(out, t)
	}

	return out, rep
}

// elevate fills Z for every 2D point the configured provider answers for,
// leaving points the provider reports missing untouched (they stay 2D,
// which Trail.SetGeometry treats as "no elevation" rather than an error).
func (c *Conditioner) elevate(l geom.Line3) geom.Line3 {
	pts := make([]geom.Point3, len(l.Points))
	copy(pts, l.Points)
	any := false
	for i, p := range pts {
		if p.HasZ {
			any = true
			continue
		}
		if z, ok := c.elev.Elevation(p.Lng, p.Lat); ok {
			pts[i].HasZ = true
			pts[i].Z = z
			any = true
		}
	}
	if !any {
		return l
	}
	return geom.Force3D(geom.Line3{Points: pts}, 0)
}
