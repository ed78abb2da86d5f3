package route

import (
	"container/heap"
	"errors"

	"github.com/shaydu/carthorse/netgraph"
)

// Sentinel errors for the shortest-path search, mirroring dijkstra's
// naming (ErrVertexNotFound, ErrNoPath) generalized from core.Graph's
// string vertex IDs to netgraph.VertexID.
var (
	ErrNoPath = errors.New("route: no path between source and target")
)

// path is one weighted walk through the graph: the ordered edge sequence
// plus its total length in kilometers.
type path struct {
	edges      []netgraph.EdgeID
	distanceKM float64
}

// shortestPath runs Dijkstra from src to dst over g, excluding any edge in
// banned and any vertex in bannedVerts (Yen's algorithm's "root path"
// deviation rules). It mirrors dijkstra.Dijkstra's lazy-decrease-key
// heap shape, generalized to float64 weights and a single target.
//
// Complexity: O((V+E) log V).
func shortestPath(g *netgraph.Graph, src, dst netgraph.VertexID, banned map[netgraph.EdgeID]bool, bannedVerts map[netgraph.VertexID]bool) (*path, error) {
	if _, ok := g.Vertex(src); !ok {
		return nil, ErrNoPath
	}
	if _, ok := g.Vertex(dst); !ok {
		return nil, ErrNoPath
	}

	dist := map[netgraph.VertexID]float64{src: 0}
	prevEdge := map[netgraph.VertexID]netgraph.EdgeID{}
	prevVert := map[netgraph.VertexID]netgraph.VertexID{}
	visited := map[netgraph.VertexID]bool{}

	pq := make(vertexPQ, 0, g.VertexCount())
	heap.Init(&pq)
	heap.Push(&pq, &pqItem{id: src, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*pqItem)
		u := item.id
		if visited[u] {
			continue
		}
		if bannedVerts[u] && u != src {
			continue
		}
		visited[u] = true
		if u == dst {
			break
		}

		edges, err := g.Neighbors(u)
		if err != nil {
			continue
		}
		for _, e := range edges {
			if banned[e.ID] {
				continue
			}
			v := e.Target
			if v == u {
				v = e.Source
			}
			if bannedVerts[v] {
				continue
			}
			nd := dist[u] + e.LengthKM
			if cur, ok := dist[v]; !ok || nd < cur {
				dist[v] = nd
				prevEdge[v] = e.ID
				prevVert[v] = u
				heap.Push(&pq, &pqItem{id: v, dist: nd})
			}
		}
	}

	if !visited[dst] {
		return nil, ErrNoPath
	}

	var edges []netgraph.EdgeID
	for v := dst; v != src; {
		eid, ok := prevEdge[v]
		if !ok {
			return nil, ErrNoPath
		}
		edges = append([]netgraph.EdgeID{eid}, edges...)
		v = prevVert[v]
	}

	return &path{edges: edges, distanceKM: dist[dst]}, nil
}

// kShortestPaths implements Yen's algorithm on top of repeated
// shortestPath calls: the first shortest path, then k-1 "deviation"
// paths found by banning, in turn, each edge of the previous shortest
// path's root prefix and rerunning Dijkstra from the deviation vertex.
//
// Complexity: O(k·V·(V+E) log V), the standard bound for Yen's algorithm
// over a Dijkstra subroutine.
func kShortestPaths(g *netgraph.Graph, src, dst netgraph.VertexID, k int) ([]*path, error) {
	first, err := shortestPath(g, src, dst, nil, nil)
	if err != nil {
		return nil, err
	}
	found := []*path{first}
	type candidate struct {
		p    *path
		cost float64
	}
	var candidates []candidate
	seen := map[string]bool{pathKey(first.edges): true}

	for len(found) < k {
		prev := found[len(found)-1]
		for i := range prev.edges {
			spurNodeIdx := i
			rootEdges := append([]netgraph.EdgeID(nil), prev.edges[:spurNodeIdx]...)
			spurNode, ok := edgeTail(g, prev.edges, spurNodeIdx, src)
			if !ok {
				continue
			}

			banned := map[netgraph.EdgeID]bool{}
			bannedVerts := map[netgraph.VertexID]bool{}
			for _, f := range found {
				if len(f.edges) > spurNodeIdx && edgesEqual(f.edges[:spurNodeIdx], rootEdges) {
					banned[f.edges[spurNodeIdx]] = true
				}
			}
			for j := 0; j < spurNodeIdx; j++ {
				v, ok := edgeTail(g, prev.edges, j, src)
				if ok {
					bannedVerts[v] = true
				}
			}

			spurPath, err := shortestPath(g, spurNode, dst, banned, bannedVerts)
			if err != nil {
				continue
			}
			total := append(append([]netgraph.EdgeID(nil), rootEdges...), spurPath.edges...)
			key := pathKey(total)
			if seen[key] {
				continue
			}
			cost := 0.0
			for _, eid := range total {
				if e, ok := g.Edge(eid); ok {
					cost += e.LengthKM
				}
			}
			candidates = append(candidates, candidate{p: &path{edges: total, distanceKM: cost}, cost: cost})
		}

		if len(candidates) == 0 {
			break
		}
		best := 0
		for i := 1; i < len(candidates); i++ {
			if candidates[i].cost < candidates[best].cost {
				best = i
			}
		}
		chosen := candidates[best]
		candidates = append(candidates[:best], candidates[best+1:]...)
		seen[pathKey(chosen.p.edges)] = true
		found = append(found, chosen.p)
	}

	return found, nil
}

// edgeTail returns the vertex the (idx)th edge in the path leaves from,
// i.e. the vertex shared with the previous hop (or src for idx==0).
func edgeTail(g *netgraph.Graph, edges []netgraph.EdgeID, idx int, src netgraph.VertexID) (netgraph.VertexID, bool) {
	if idx == 0 {
		return src, true
	}
	prevEdge, ok := g.Edge(edges[idx-1])
	if !ok {
		return 0, false
	}
	curEdge, ok := g.Edge(edges[idx])
	if !ok {
		return 0, false
	}
	if prevEdge.Source == curEdge.Source || prevEdge.Target == curEdge.Source {
		return curEdge.Source, true
	}
	return curEdge.Target, true
}

func edgesEqual(a, b []netgraph.EdgeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathKey(edges []netgraph.EdgeID) string {
	b := make([]byte, 0, len(edges)*8)
	for _, e := range edges {
		b = append(b, byte(e), byte(e>>8), byte(e>>16), byte(e>>24), byte(e>>32), byte(e>>40), byte(e>>48), byte(e>>56))
	}
	return string(b)
}

// pqItem and vertexPQ implement the same lazy-decrease-key min-heap shape
// as dijkstra.nodeItem/nodePQ, generalized to netgraph.VertexID keys and
// float64 distances.
type pqItem struct {
	id   netgraph.VertexID
	dist float64
}

type vertexPQ []*pqItem

func (pq vertexPQ) Len() int            { return len(pq) }
func (pq vertexPQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq vertexPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *vertexPQ) Push(x interface{}) { *pq = append(*pq, x.(*pqItem)) }
func (pq *vertexPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
