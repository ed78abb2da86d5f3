package geom

import "github.com/paulmach/orb"

// Point is a bare 2D WGS84 coordinate.
type Point struct {
	Lng, Lat float64
}

// ToOrb converts to the orb.Point the rest of the kernel delegates to.
func (p Point) ToOrb() orb.Point { return orb.Point{p.Lng, p.Lat} }

// Point3 is a WGS84 coordinate with optional elevation. HasZ distinguishes
// "elevation known to be zero" from "elevation not supplied".
type Point3 struct {
	Lng, Lat float64
	HasZ     bool
	Z        float64
}

// Point drops the elevation.
func (p Point3) Point() Point { return Point{Lng: p.Lng, Lat: p.Lat} }

// ToOrb converts the 2D projection to an orb.Point.
func (p Point3) ToOrb() orb.Point { return orb.Point{p.Lng, p.Lat} }

// Line3 is an ordered 3D polyline. A valid Line3 has at least two points.
type Line3 struct {
	Points []Point3
}

// MakeLine constructs a Line3 from an explicit vertex sequence.
func MakeLine(points []Point3) Line3 {
	cp := make([]Point3, len(points))
	copy(cp, points)
	return Line3{Points: cp}
}

// To2D returns the orb.LineString projection used by every geodesic helper.
func (l Line3) To2D() orb.LineString {
	ls := make(orb.LineString, len(l.Points))
	for i, p := range l.Points {
		ls[i] = p.ToOrb()
	}
	return ls
}

// Is3D reports whether every point in the line carries elevation.
func (l Line3) Is3D() bool {
	if len(l.Points) == 0 {
		return false
	}
	for _, p := range l.Points {
		if !p.HasZ {
			return false
		}
	}
	return true
}
