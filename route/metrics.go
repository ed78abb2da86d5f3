package route

import (
	"github.com/google/uuid"

	"github.com/shaydu/carthorse/geom"
	"github.com/shaydu/carthorse/netgraph"
)

// aggregate sums length/gain/loss over an edge sequence and returns the
// unique trail count, matching spec §8 property 6: "every recommendation's
// aggregate metrics equal the sum over its edges."
func aggregate(g *netgraph.Graph, edges []netgraph.EdgeID) (distanceKM, gainM, lossM float64, trailCount int, uniqueTrails int) {
	seen := map[uuid.UUID]bool{}
	for _, eid := range edges {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		distanceKM += e.LengthKM
		gainM += e.GainM
		lossM += e.LossM
		trailCount++
		if !seen[e.TrailUUID] {
			seen[e.TrailUUID] = true
			uniqueTrails++
		}
	}
	return distanceKM, gainM, lossM, trailCount, len(seen)
}

// pathGeometry concatenates the 3D geometry of each edge in order,
// orienting each segment so it continues from the previous segment's end
// point (edges are stored with a fixed source->target orientation but a
// path may traverse one backwards).
func pathGeometry(g *netgraph.Graph, edges []netgraph.EdgeID) geom.Line3 {
	var pts []geom.Point3
	var cursor netgraph.VertexID
	haveCursor := false

	for i, eid := range edges {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		seg := e.Geometry.Points
		forward := true
		if haveCursor && e.Target == cursor {
			forward = false
		}
		if !haveCursor && i+1 < len(edges) {
			// The first edge is oriented by the edge that follows it.
			if next, ok := g.Edge(edges[i+1]); ok &&
				(e.Source == next.Source || e.Source == next.Target) &&
				e.Target != next.Source && e.Target != next.Target {
				forward = false
			}
		}
		if !forward {
			rev := make([]geom.Point3, len(seg))
			for i, p := range seg {
				rev[len(seg)-1-i] = p
			}
			seg = rev
		}
		if len(pts) > 0 && len(seg) > 0 {
			seg = seg[1:] // avoid duplicating the shared vertex
		}
		pts = append(pts, seg...)
		if forward {
			cursor = e.Target
		} else {
			cursor = e.Source
		}
		haveCursor = true
	}
	return geom.MakeLine(pts)
}

// connectivityScore is the fraction of consecutive edge pairs that share a
// common trail name (tracked via TrailUUID equality — name identity is a
// property of the originating trail, which edges don't carry directly, so
// this uses the stronger "same trail" signal) or meet at a true
// intersection vertex (spec §4.5.5).
func connectivityScore(g *netgraph.Graph, edges []netgraph.EdgeID) float64 {
	if len(edges) < 2 {
		return 1.0
	}
	good := 0
	for i := 1; i < len(edges); i++ {
		prev, ok1 := g.Edge(edges[i-1])
		cur, ok2 := g.Edge(edges[i])
		if !ok1 || !ok2 {
			continue
		}
		if prev.TrailUUID == cur.TrailUUID {
			good++
			continue
		}
		shared := sharedVertex(prev, cur)
		if v, ok := g.Vertex(shared); ok && v.Kind == netgraph.KindIntersection {
			good++
		}
	}
	return float64(good) / float64(len(edges)-1)
}

func sharedVertex(a, b *netgraph.Edge) netgraph.VertexID {
	switch {
	case a.Source == b.Source || a.Source == b.Target:
		return a.Source
	default:
		return a.Target
	}
}
