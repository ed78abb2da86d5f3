package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// NPoints returns the number of vertices in the line.
func NPoints(l Line3) int { return len(l.Points) }

// LengthMeters returns the geodesic length of the line on a sphere
// (github.com/paulmach/orb/geo, haversine-based); the flattening of the
// WGS84 ellipsoid is not modelled.
func LengthMeters(l Line3) float64 {
	if len(l.Points) < 2 {
		return 0
	}
	return geo.Length(l.To2D())
}

// Envelope returns the axis-aligned bounding box.
func Envelope(l Line3) orb.Bound {
	return l.To2D().Bound()
}

// StartPoint returns the first vertex.
func StartPoint(l Line3) (Point3, error) {
	if len(l.Points) == 0 {
		return Point3{}, ErrDegenerateGeometry
	}
	return l.Points[0], nil
}

// EndPoint returns the last vertex.
func EndPoint(l Line3) (Point3, error) {
	if len(l.Points) == 0 {
		return Point3{}, ErrDegenerateGeometry
	}
	return l.Points[len(l.Points)-1], nil
}

// DumpPoints returns the ordered vertex sequence.
func DumpPoints(l Line3) []Point3 {
	out := make([]Point3, len(l.Points))
	copy(out, l.Points)
	return out
}

// IsValid reports whether the line has at least two points, no repeated
// consecutive points, and no segment self-intersections between
// non-adjacent segments.
func IsValid(l Line3) bool {
	if len(l.Points) < 2 {
		return false
	}
	for i := 1; i < len(l.Points); i++ {
		if samePoint(l.Points[i-1].ToOrb(), l.Points[i].ToOrb()) {
			return false
		}
	}
	n := len(l.Points)
	for i := 0; i+1 < n; i++ {
		a1, a2 := l.Points[i].ToOrb(), l.Points[i+1].ToOrb()
		for j := i + 1; j+1 < n; j++ {
			// Adjacent segments legitimately share an endpoint.
			if j == i+1 {
				continue
			}
			b1, b2 := l.Points[j].ToOrb(), l.Points[j+1].ToOrb()
			if _, ok := segSegIntersect(a1, a2, b1, b2); ok {
				return false
			}
		}
	}
	return true
}

// Force2D strips elevation from every point.
func Force2D(l Line3) Line3 {
	out := make([]Point3, len(l.Points))
	for i, p := range l.Points {
		out[i] = Point3{Lng: p.Lng, Lat: p.Lat}
	}
	return Line3{Points: out}
}

// Force3D fills missing elevation. Points between two known elevations are
// interpolated linearly by arc-length fraction; if no point carries
// elevation, every point is set to defaultZ.
func Force3D(l Line3, defaultZ float64) Line3 {
	pts := make([]Point3, len(l.Points))
	copy(pts, l.Points)

	known := make([]int, 0, len(pts))
	for i, p := range pts {
		if p.HasZ {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		for i := range pts {
			pts[i].HasZ = true
			pts[i].Z = defaultZ
		}
		return Line3{Points: pts}
	}

	cum := cumulativeLength(pts)
	// Before the first known point: hold its elevation constant.
	for i := 0; i < known[0]; i++ {
		pts[i].HasZ = true
		pts[i].Z = pts[known[0]].Z
	}
	// After the last known point: hold constant.
	last := known[len(known)-1]
	for i := last + 1; i < len(pts); i++ {
		pts[i].HasZ = true
		pts[i].Z = pts[last].Z
	}
	// Between consecutive known points: linear interpolation by distance.
	for k := 0; k+1 < len(known); k++ {
		lo, hi := known[k], known[k+1]
		span := cum[hi] - cum[lo]
		for i := lo + 1; i < hi; i++ {
			if span <= 0 {
				pts[i].Z = pts[lo].Z
			} else {
				frac := (cum[i] - cum[lo]) / span
				pts[i].Z = pts[lo].Z + frac*(pts[hi].Z-pts[lo].Z)
			}
			pts[i].HasZ = true
		}
	}
	return Line3{Points: pts}
}

// Intersects reports whether any segment of a crosses any segment of b.
func Intersects(a, b Line3) bool {
	for i := 0; i+1 < len(a.Points); i++ {
		a1, a2 := a.Points[i].ToOrb(), a.Points[i+1].ToOrb()
		for j := 0; j+1 < len(b.Points); j++ {
			b1, b2 := b.Points[j].ToOrb(), b.Points[j+1].ToOrb()
			if _, ok := segSegIntersect(a1, a2, b1, b2); ok {
				return true
			}
		}
	}
	return false
}

// DWithin reports whether any point on a lies within d geodesic meters of
// any point on b.
func DWithin(a, b Line3, d float64) bool {
	for i := 0; i+1 < len(a.Points); i++ {
		a1, a2 := a.Points[i].ToOrb(), a.Points[i+1].ToOrb()
		for j := 0; j+1 < len(b.Points); j++ {
			b1, b2 := b.Points[j].ToOrb(), b.Points[j+1].ToOrb()
			if segSegDistanceMeters(a1, a2, b1, b2) <= d {
				return true
			}
		}
	}
	return false
}

// Intersection returns the set of points where a and b cross, each with
// elevation interpolated from a's segment. Points closer than 1e-9 degrees
// to one already returned are treated as the same location.
func Intersection(a, b Line3) []Point3 {
	var out []Point3
	for i := 0; i+1 < len(a.Points); i++ {
		a1, a2 := a.Points[i].ToOrb(), a.Points[i+1].ToOrb()
		for j := 0; j+1 < len(b.Points); j++ {
			b1, b2 := b.Points[j].ToOrb(), b.Points[j+1].ToOrb()
			ip, ok := segSegIntersect(a1, a2, b1, b2)
			if !ok {
				continue
			}
			z, hasZ := interpZAtPoint(a.Points[i], a.Points[i+1], ip)
			p3 := Point3{Lng: ip[0], Lat: ip[1], HasZ: hasZ, Z: z}
			if !containsNear(out, p3) {
				out = append(out, p3)
			}
		}
	}
	return out
}

// projection is the closest point on a line to an arbitrary query point.
type projection struct {
	SegIndex   int
	SegT       float64
	Point      Point3
	LineT      float64 // normalized 0..1 position along the whole line
	DistMeters float64
}

// LineLocate returns the normalized 0..1 position of p's closest
// projection onto l.
func LineLocate(l Line3, p Point3) float64 {
	return project(l, p).LineT
}

// DistanceMeters returns the geodesic distance from p to its closest
// projection onto l.
func DistanceMeters(l Line3, p Point3) float64 {
	return project(l, p).DistMeters
}

// PointDistanceMeters returns the geodesic distance between two points.
func PointDistanceMeters(a, b Point3) float64 {
	return geo.Distance(a.ToOrb(), b.ToOrb())
}

// OverlapFraction returns the fraction of a's vertices whose closest
// projection onto b lies within tolM meters, approximating what fraction
// of a's length runs alongside b (spec §4.3.2's duplicate test). Exact for
// densified lines; a caller comparing sparse trails should Segmentize
// first.
func OverlapFraction(a, b Line3, tolM float64) float64 {
	if len(a.Points) == 0 {
		return 0
	}
	within := 0
	for _, p := range a.Points {
		if DistanceMeters(b, p) <= tolM {
			within++
		}
	}
	return float64(within) / float64(len(a.Points))
}

// HausdorffMeters returns the discrete (vertex-sampled) Hausdorff distance
// between a and b: the larger of the two directed maxima of each line's
// per-vertex distance to the other line's closest projection.
func HausdorffMeters(a, b Line3) float64 {
	dAB := directedHausdorff(a, b)
	dBA := directedHausdorff(b, a)
	if dAB > dBA {
		return dAB
	}
	return dBA
}

// GridSnap rounds p onto a grid whose cell size is approximately
// toleranceM meters, using a local equirectangular approximation. It is
// the deterministic merge key spec §4.3.4/§4.4.1 call for when no existing
// vertex lies within tolerance: points in the same grid cell snap to the
// same key, but two nearby points on either side of a cell boundary snap
// to different keys however close they are.
func GridSnap(p Point3, toleranceM float64) Point3 {
	const metersPerDegreeLat = 111320.0
	latStep := toleranceM / metersPerDegreeLat
	lonScale := math.Cos(p.Lat * math.Pi / 180)
	if lonScale < 1e-6 {
		lonScale = 1e-6
	}
	lonStep := toleranceM / (metersPerDegreeLat * lonScale)

	snap := func(v, step float64) float64 {
		if step <= 0 {
			return v
		}
		return math.Round(v/step) * step
	}
	return Point3{
		Lng:  snap(p.Lng, lonStep),
		Lat:  snap(p.Lat, latStep),
		HasZ: p.HasZ,
		Z:    p.Z,
	}
}

// GridKey returns an exact-equality grouping key for an already-snapped
// point, stable to 1e-7 degrees (~1cm).
func GridKey(p Point3) [2]int64 {
	const scale = 1e7
	return [2]int64{int64(math.Round(p.Lng * scale)), int64(math.Round(p.Lat * scale))}
}

func directedHausdorff(a, b Line3) float64 {
	max := 0.0
	for _, p := range a.Points {
		d := DistanceMeters(b, p)
		if d > max {
			max = d
		}
	}
	return max
}

// Split divides l at the closest projection of p, returning the two
// daughter lines in order. It fails if the projection lies within
// endpointEpsilon (a normalized 0..1 fraction) of either endpoint, or if
// either resulting line collapses below two distinct points.
func Split(l Line3, p Point3, endpointEpsilon float64) (Line3, Line3, error) {
	if len(l.Points) < 2 {
		return Line3{}, Line3{}, ErrDegenerateGeometry
	}
	proj := project(l, p)
	if proj.LineT < endpointEpsilon || proj.LineT > 1-endpointEpsilon {
		return Line3{}, Line3{}, fmt.Errorf("%w: t=%.6f", ErrNotSplittable, proj.LineT)
	}

	first := append(append([]Point3{}, l.Points[:proj.SegIndex+1]...), proj.Point)
	second := append([]Point3{proj.Point}, l.Points[proj.SegIndex+1:]...)
	first = dedupConsecutive(first)
	second = dedupConsecutive(second)
	if len(first) < 2 || len(second) < 2 {
		return Line3{}, Line3{}, ErrDegenerateGeometry
	}
	return Line3{Points: first}, Line3{Points: second}, nil
}

// Segmentize returns a densified copy with no segment longer than
// maxSpacingM, interpolating elevation linearly for inserted points.
func Segmentize(l Line3, maxSpacingM float64) Line3 {
	if maxSpacingM <= 0 || len(l.Points) < 2 {
		return l
	}
	out := make([]Point3, 0, len(l.Points))
	out = append(out, l.Points[0])
	for i := 0; i+1 < len(l.Points); i++ {
		a, b := l.Points[i], l.Points[i+1]
		segLen := geo.Distance(a.ToOrb(), b.ToOrb())
		if segLen <= maxSpacingM {
			out = append(out, b)
			continue
		}
		n := int(math.Ceil(segLen / maxSpacingM))
		for k := 1; k < n; k++ {
			t := float64(k) / float64(n)
			out = append(out, lerpPoint(a, b, t))
		}
		out = append(out, b)
	}
	return Line3{Points: out}
}

// Simplify runs a Douglas-Peucker reduction in degree space (tolDeg is a
// planar tolerance, matching simplify_tolerance_deg). No-op if the line has
// fewer than minPts points.
func Simplify(l Line3, tolDeg float64, minPts int) Line3 {
	if len(l.Points) < minPts || len(l.Points) < 3 {
		return l
	}
	keep := make([]bool, len(l.Points))
	keep[0] = true
	keep[len(l.Points)-1] = true
	douglasPeucker(l.Points, 0, len(l.Points)-1, tolDeg, keep)
	out := make([]Point3, 0, len(l.Points))
	for i, k := range keep {
		if k {
			out = append(out, l.Points[i])
		}
	}
	if len(out) < 2 {
		return l
	}
	return Line3{Points: out}
}

func douglasPeucker(pts []Point3, lo, hi int, tol float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	a, b := pts[lo].ToOrb(), pts[hi].ToOrb()
	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistanceDeg(pts[i].ToOrb(), a, b)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > tol {
		keep[maxIdx] = true
		douglasPeucker(pts, lo, maxIdx, tol, keep)
		douglasPeucker(pts, maxIdx, hi, tol, keep)
	}
}

func perpendicularDistanceDeg(p, a, b orb.Point) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		dx, dy := p[0]-a[0], p[1]-a[1]
		return math.Hypot(dx, dy)
	}
	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / lenSq
	projX, projY := a[0]+t*abx, a[1]+t*aby
	return math.Hypot(p[0]-projX, p[1]-projY)
}

// --- internal helpers -------------------------------------------------

const samePointEpsilonDeg = 1e-12

func samePoint(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < samePointEpsilonDeg && math.Abs(a[1]-b[1]) < samePointEpsilonDeg
}

func containsNear(pts []Point3, p Point3) bool {
	const eps = 1e-9
	for _, q := range pts {
		if math.Abs(q.Lng-p.Lng) < eps && math.Abs(q.Lat-p.Lat) < eps {
			return true
		}
	}
	return false
}

func dedupConsecutive(pts []Point3) []Point3 {
	if len(pts) == 0 {
		return pts
	}
	out := make([]Point3, 0, len(pts))
	out = append(out, pts[0])
	for _, p := range pts[1:] {
		if !samePoint(p.ToOrb(), out[len(out)-1].ToOrb()) {
			out = append(out, p)
		}
	}
	return out
}

func lerpPoint(a, b Point3, t float64) Point3 {
	p := Point3{
		Lng: a.Lng + t*(b.Lng-a.Lng),
		Lat: a.Lat + t*(b.Lat-a.Lat),
	}
	if a.HasZ && b.HasZ {
		p.HasZ = true
		p.Z = a.Z + t*(b.Z-a.Z)
	} else if a.HasZ {
		p.HasZ = true
		p.Z = a.Z
	} else if b.HasZ {
		p.HasZ = true
		p.Z = b.Z
	}
	return p
}

func cumulativeLength(pts []Point3) []float64 {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + geo.Distance(pts[i-1].ToOrb(), pts[i].ToOrb())
	}
	return cum
}

// interpZAtPoint interpolates elevation for point ip assumed to lie on
// segment a->b, by its fractional position along that segment.
func interpZAtPoint(a, b Point3, ip orb.Point) (float64, bool) {
	if !a.HasZ || !b.HasZ {
		if a.HasZ {
			return a.Z, true
		}
		if b.HasZ {
			return b.Z, true
		}
		return 0, false
	}
	segLen := geo.Distance(a.ToOrb(), b.ToOrb())
	if segLen == 0 {
		return a.Z, true
	}
	t := geo.Distance(a.ToOrb(), ip) / segLen
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Z + t*(b.Z-a.Z), true
}

// project finds the closest point on l to p, returning both the per-segment
// and whole-line normalized positions plus interpolated elevation.
func project(l Line3, p Point3) projection {
	pts := l.Points
	if len(pts) < 2 {
		return projection{}
	}
	cum := cumulativeLength(pts)
	total := cum[len(cum)-1]

	best := projection{DistMeters: math.Inf(1)}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i].ToOrb(), pts[i+1].ToOrb()
		abx, aby := b[0]-a[0], b[1]-a[1]
		lenSq := abx*abx + aby*aby
		t := 0.0
		if lenSq > 0 {
			t = ((p.Lng-a[0])*abx + (p.Lat-a[1])*aby) / lenSq
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
		}
		projPt := orb.Point{a[0] + t*abx, a[1] + t*aby}
		dist := geo.Distance(p.ToOrb(), projPt)
		if dist < best.DistMeters {
			segLen := geo.Distance(a, b)
			lineT := 0.0
			if total > 0 {
				lineT = (cum[i] + t*segLen) / total
			}
			z, hasZ := interpZAtPoint(pts[i], pts[i+1], projPt)
			best = projection{
				SegIndex:   i,
				SegT:       t,
				Point:      Point3{Lng: projPt[0], Lat: projPt[1], HasZ: hasZ, Z: z},
				LineT:      lineT,
				DistMeters: dist,
			}
		}
	}
	return best
}

// segSegIntersect returns the intersection point of segments a1-a2 and
// b1-b2 (proper crossings and endpoint touches), or ok=false for disjoint
// or purely collinear-overlapping segments (the latter is handled by the
// caller per spec §4.3.4: overlaps surface as shared-endpoint points).
func segSegIntersect(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		denom := (a2[0]-a1[0])*(b2[1]-b1[1]) - (a2[1]-a1[1])*(b2[0]-b1[0])
		if denom == 0 {
			return orb.Point{}, false
		}
		t := ((b1[0]-a1[0])*(b2[1]-b1[1]) - (b1[1]-a1[1])*(b2[0]-b1[0])) / denom
		return orb.Point{a1[0] + t*(a2[0]-a1[0]), a1[1] + t*(a2[1]-a1[1])}, true
	}
	if d1 == 0 && onSegment(b1, b2, a1) {
		return a1, true
	}
	if d2 == 0 && onSegment(b1, b2, a2) {
		return a2, true
	}
	if d3 == 0 && onSegment(a1, a2, b1) {
		return b1, true
	}
	if d4 == 0 && onSegment(a1, a2, b2) {
		return b2, true
	}
	return orb.Point{}, false
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	const eps = 1e-12
	return math.Min(a[0], b[0])-eps <= p[0] && p[0] <= math.Max(a[0], b[0])+eps &&
		math.Min(a[1], b[1])-eps <= p[1] && p[1] <= math.Max(a[1], b[1])+eps
}

func pointSegmentDistanceMeters(p, a, b orb.Point) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return geo.Distance(p, a)
	}
	apx, apy := p[0]-a[0], p[1]-a[1]
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	proj := orb.Point{a[0] + t*abx, a[1] + t*aby}
	return geo.Distance(p, proj)
}

func segSegDistanceMeters(a1, a2, b1, b2 orb.Point) float64 {
	if _, ok := segSegIntersect(a1, a2, b1, b2); ok {
		return 0
	}
	d1 := pointSegmentDistanceMeters(a1, b1, b2)
	d2 := pointSegmentDistanceMeters(a2, b1, b2)
	d3 := pointSegmentDistanceMeters(b1, a1, a2)
	d4 := pointSegmentDistanceMeters(b2, a1, a2)
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}
