// Package core defines the trail-domain entities of spec §3: Trail,
// IntersectionPoint, RoutePattern, and RouteRecommendation, plus the closed
// categorical enums (Surface, TrailType, Difficulty, RouteShape) that
// replace free-form attribute maps with validated, typed fields. Attributes
// a producer supplies outside the closed sets are carried in a typed
// TagBag rather than a map[string]interface{}.
//
// Graph-domain entities (Vertex, Edge, and the routable graph container)
// live in package netgraph, generalized from the teacher's core.Graph
// (github.com/katalvlaran/lvlath/core) from string vertex ids and int64
// weights to integer VertexID/EdgeID and float64 length/elevation.
package core
