package geom

import (
	"fmt"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Index is the mandatory spatial index of spec §4.1: an R-tree
// (github.com/dhconnelly/rtreego) over envelopes, keyed by caller-chosen
// string ids (trail uuids, edge ids, …). It prunes candidates by bounding
// box; callers needing exact geodesic containment re-check with DWithin
// against the full geometry.
type Index struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[string]*indexedBound
}

type indexedBound struct {
	id   string
	rect *rtreego.Rect
}

func (e *indexedBound) Bounds() *rtreego.Rect { return e.rect }

// NewIndex constructs an empty 2D R-tree index with branching factors
// tuned for trail-network scale (tens of thousands of envelopes per run).
func NewIndex() *Index {
	return &Index{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[string]*indexedBound),
	}
}

// minSpanDeg avoids rtreego.NewRect rejecting a zero-extent rectangle for
// a point-like bound (single-point trail fragment or exact duplicate
// coordinates).
const minSpanDeg = 1e-9

func boundToRect(b orb.Bound) (*rtreego.Rect, error) {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w < minSpanDeg {
		w = minSpanDeg
	}
	if h < minSpanDeg {
		h = minSpanDeg
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}

// Insert adds or replaces the envelope stored under id.
func (ix *Index) Insert(id string, bound orb.Bound) error {
	rect, err := boundToRect(bound)
	if err != nil {
		return fmt.Errorf("geom: index insert %s: %w", id, err)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.entries[id]; ok {
		ix.tree.Delete(old)
	}
	entry := &indexedBound{id: id, rect: rect}
	ix.entries[id] = entry
	ix.tree.Insert(entry)
	return nil
}

// Delete removes id from the index, reporting whether it was present.
func (ix *Index) Delete(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	entry, ok := ix.entries[id]
	if !ok {
		return false
	}
	delete(ix.entries, id)
	return ix.tree.Delete(entry)
}

// Len reports how many envelopes are currently indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// QueryBound returns the ids of every indexed envelope intersecting bound.
func (ix *Index) QueryBound(bound orb.Bound) ([]string, error) {
	rect, err := boundToRect(bound)
	if err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	hits := ix.tree.SearchIntersect(rect)
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*indexedBound).id)
	}
	return ids, nil
}

// QueryDWithin returns the ids of every indexed envelope within
// approximately d geodesic meters of point p. The padding is a degree
// approximation of d at p's latitude, so results are a superset suitable
// for pruning before an exact DWithin check.
func (ix *Index) QueryDWithin(p Point, d float64) ([]string, error) {
	pad := metersToDegreesPad(p, d)
	bound := orb.Bound{
		Min: orb.Point{p.Lng - pad, p.Lat - pad},
		Max: orb.Point{p.Lng + pad, p.Lat + pad},
	}
	return ix.QueryBound(bound)
}

const metersPerDegreeLat = 111320.0

func metersToDegreesPad(p Point, d float64) float64 {
	latPad := d / metersPerDegreeLat
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if cosLat < 0.1 {
		cosLat = 0.1
	}
	lngPad := d / (metersPerDegreeLat * cosLat)
	if lngPad > latPad {
		return lngPad
	}
	return latPad
}
