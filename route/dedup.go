package route

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/netgraph"
)

// fingerprint computes spec §4.5.6's request fingerprint:
// hash(pattern_id, sorted(edge_ids)). Edge ids are sorted so two
// candidates that traverse the same edge set in opposite directions
// collide, as the spec requires.
func fingerprint(patternName string, edges []netgraph.EdgeID) string {
	sorted := append([]netgraph.EdgeID(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	b.WriteString(patternName)
	b.WriteByte('|')
	for i, eid := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(eid), 10))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// dedupeFingerprints drops candidates with a colliding fingerprint,
// keeping the one with the highest score (spec §4.5.6). Ties are broken
// by uuid for determinism (spec §5's sort order).
func dedupeFingerprints(candidates []*core.RouteRecommendation) []*core.RouteRecommendation {
	best := make(map[string]*core.RouteRecommendation)
	for _, c := range candidates {
		fp := fingerprint(c.Pattern.Name, c.Edges)
		c.Fingerprint = fp
		cur, ok := best[fp]
		if !ok {
			best[fp] = c
			continue
		}
		if c.Score > cur.Score || (c.Score == cur.Score && c.UUID.String() < cur.UUID.String()) {
			best[fp] = c
		}
	}

	out := make([]*core.RouteRecommendation, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
