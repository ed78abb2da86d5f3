package route

import (
	"strconv"
	"strings"

	"github.com/shaydu/carthorse/netgraph"
)

// circuit is a simple cycle: an ordered, closed vertex walk plus the
// edges used to traverse it.
type circuit struct {
	vertices []netgraph.VertexID
	edges    []netgraph.EdgeID
}

const (
	white = 0
	gray  = 1
	black = 2
)

// hawickCircuits enumerates simple circuits in g up to maxLenKM total
// length, generalizing dfs.DetectCycles's three-color DFS with
// path-stack cycle capture to Hawick & James's pruning rule: a branch is
// abandoned as soon as its running length exceeds the bound, rather than
// only after a full traversal completes. Canonical rotation dedup mirrors
// dfs.canonical (minimal rotation among forward and reversed readings).
//
// Complexity: exponential in the worst case, bounded in practice by
// maxLenKM pruning; acceptable because L3 scopes search to one
// subnetwork at a time (spec §4.5.2).
func hawickCircuits(g *netgraph.Graph, maxLenKM float64) []circuit {
	state := make(map[netgraph.VertexID]int)
	var pathV []netgraph.VertexID
	var pathE []netgraph.EdgeID
	seen := make(map[string]bool)
	var out []circuit

	verts := g.Vertices()
	for _, v := range verts {
		if state[v.ID] != white {
			continue
		}
		visit(g, v.ID, v.ID, state, &pathV, &pathE, 0, maxLenKM, seen, &out)
	}
	return out
}

func visit(
	g *netgraph.Graph,
	start, cur netgraph.VertexID,
	state map[netgraph.VertexID]int,
	pathV *[]netgraph.VertexID,
	pathE *[]netgraph.EdgeID,
	curLen float64,
	maxLen float64,
	seen map[string]bool,
	out *[]circuit,
) {
	state[cur] = gray
	*pathV = append(*pathV, cur)

	edges, err := g.Neighbors(cur)
	if err == nil {
		for _, e := range edges {
			nbr := e.Target
			if nbr == cur {
				nbr = e.Source
			}
			// Skip immediate backtrack over the edge just used.
			if len(*pathE) > 0 && (*pathE)[len(*pathE)-1] == e.ID {
				continue
			}
			nl := curLen + e.LengthKM
			if nl > maxLen {
				continue
			}

			if nbr == start && len(*pathV) >= 3 {
				closedV := append(append([]netgraph.VertexID(nil), *pathV...), start)
				closedE := append(append([]netgraph.EdgeID(nil), *pathE...), e.ID)
				sig := circuitSignature(closedV[:len(closedV)-1])
				if !seen[sig] {
					seen[sig] = true
					*out = append(*out, circuit{vertices: closedV, edges: closedE})
				}
				continue
			}

			if state[nbr] == white {
				*pathE = append(*pathE, e.ID)
				visit(g, start, nbr, state, pathV, pathE, nl, maxLen, seen, out)
				*pathE = (*pathE)[:len(*pathE)-1]
			}
		}
	}

	*pathV = (*pathV)[:len(*pathV)-1]
	state[cur] = white
}

// circuitSignature returns the lexicographically minimal rotation among
// the forward and reversed vertex sequences, so a circuit found starting
// from any of its vertices (or traversed in either direction) dedupes to
// the same key.
func circuitSignature(vertices []netgraph.VertexID) string {
	fwd := minimalRotation(vertices)
	rev := make([]netgraph.VertexID, len(vertices))
	for i, v := range vertices {
		rev[len(vertices)-1-i] = v
	}
	bwd := minimalRotation(rev)

	pick := fwd
	if lessSeq(bwd, fwd) {
		pick = bwd
	}
	return seqKey(pick)
}

func minimalRotation(seq []netgraph.VertexID) []netgraph.VertexID {
	n := len(seq)
	best := seq
	for i := 1; i < n; i++ {
		cand := append(append([]netgraph.VertexID(nil), seq[i:]...), seq[:i]...)
		if lessSeq(cand, best) {
			best = cand
		}
	}
	return best
}

func lessSeq(a, b []netgraph.VertexID) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// seqKey renders a vertex sequence as a stable comma-joined signature,
// preserving order (the sequence's order is the circuit's identity; only
// rotation/reversal are normalized by the caller before this is called).
func seqKey(seq []netgraph.VertexID) string {
	var b strings.Builder
	for i, v := range seq {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}
