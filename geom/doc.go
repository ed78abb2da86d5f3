// Package geom is the geometry kernel: the stable set of 2D/3D polyline
// operations every other package treats as a black box, plus a spatial
// index for pruning candidate pairs before any pairwise pass.
//
// Coordinates are WGS84 longitude/latitude; elevation, where present, is
// meters above the reference ellipsoid and travels alongside the 2D
// carrier rather than inside it, since the underlying 2D engine
// (github.com/paulmach/orb) is deliberately two-dimensional. Line3 is
// carthorse's 3D line type: an ordered []Point3 where each point may or
// may not carry elevation.
//
// All length and distance calculations are geodesic (github.com/paulmach/orb/geo,
// haversine-based) except Simplify, whose tolerance is explicitly in
// degrees (matching the simplify_tolerance_deg configuration knob) and is
// therefore a planar Douglas-Peucker pass.
//
// Complexity: most operations are O(n) in the number of line points;
// Intersects/Intersection/DWithin are O(n*m) over the two lines' segments,
// pruned upstream by Index before being called pairwise.
package geom
