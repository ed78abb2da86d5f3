package route

import (
	"fmt"
	"sort"

	"github.com/shaydu/carthorse/netgraph"
)

// partitionSubnetworks computes the connected components of g (spec
// §4.5.2) via BFS flood-fill, the same traversal shape as
// gridgraph.ConnectedComponents generalized from grid cells to graph
// vertices, and returns one induced subgraph per component that falls
// inside [minSize, maxSize]. Components outside the window are reported
// as skip reasons rather than silently dropped.
//
// Determinism: components are returned ordered by their lowest vertex id,
// and within a component BFS visits neighbors in the sorted order
// netgraph.Graph.Neighbors already guarantees.
func partitionSubnetworks(g *netgraph.Graph, minSize, maxSize int) ([]*netgraph.Graph, []string) {
	verts := g.Vertices()
	visited := make(map[netgraph.VertexID]bool, len(verts))

	type component struct {
		min  netgraph.VertexID
		keep map[netgraph.VertexID]bool
	}
	var components []component

	for _, v := range verts {
		if visited[v.ID] {
			continue
		}
		keep := map[netgraph.VertexID]bool{v.ID: true}
		visited[v.ID] = true
		queue := []netgraph.VertexID{v.ID}
		min := v.ID

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			edges, err := g.Neighbors(cur)
			if err != nil {
				continue
			}
			for _, e := range edges {
				other := e.Target
				if other == cur {
					other = e.Source
				}
				if !visited[other] {
					visited[other] = true
					keep[other] = true
					queue = append(queue, other)
					if other < min {
						min = other
					}
				}
			}
		}
		components = append(components, component{min: min, keep: keep})
	}

	sort.Slice(components, func(i, j int) bool { return components[i].min < components[j].min })

	var subnets []*netgraph.Graph
	var skipped []string
	for _, c := range components {
		n := len(c.keep)
		if n < minSize {
			skipped = append(skipped, fmt.Sprintf("component@%d: %d nodes below min_subnetwork_size %d", c.min, n, minSize))
			continue
		}
		if n > maxSize {
			skipped = append(skipped, fmt.Sprintf("component@%d: %d nodes above max_subnetwork_size %d", c.min, n, maxSize))
			continue
		}
		subnets = append(subnets, netgraph.InducedSubgraph(g, c.keep))
	}
	return subnets, skipped
}
