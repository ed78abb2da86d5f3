package backfill

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// DefaultEndpoint is the public Overpass API instance used when Client
// leaves Endpoint empty.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// OSMBackfill implements Backfill against a live Overpass API endpoint,
// decoding the OSM-XML response with github.com/paulmach/osm's osmxml
// reader into core.Trail records.
type OSMBackfill struct {
	Endpoint string
	HTTP     *http.Client
}

var _ Backfill = (*OSMBackfill)(nil)

// FetchTrails builds an Overpass QL query from bbox/filters, posts it to
// the configured endpoint, and maps each returned way with a trail-like
// highway tag into a core.Trail. Ways referencing nodes the response
// didn't include (truncated by Overpass's own limits) are skipped rather
// than failing the whole request.
func (b *OSMBackfill) FetchTrails(ctx context.Context, bbox BBox, filters Filters) ([]*core.Trail, error) {
	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := b.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	query := buildQuery(bbox, filters)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(url.Values{"data": {query}}.Encode()))
	if err != nil {
		return nil, carterr.New(carterr.BackfillUnavailable, "backfill.FetchTrails", nil, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, carterr.New(carterr.BackfillUnavailable, "backfill.FetchTrails", nil, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, carterr.New(carterr.BackfillUnavailable, "backfill.FetchTrails", nil,
			fmt.Errorf("overpass: unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, carterr.New(carterr.BackfillUnavailable, "backfill.FetchTrails", nil, err)
	}

	doc, err := osmxml.Decode(ctx, bytes.NewReader(body))
	if err != nil {
		return nil, carterr.New(carterr.BackfillUnavailable, "backfill.FetchTrails", nil, fmt.Errorf("decode overpass response: %w", err))
	}

	return waysToTrails(doc, filters, bbox), nil
}

func buildQuery(bbox BBox, filters Filters) string {
	timeout := filters.TimeoutSeconds
	if timeout <= 0 {
		timeout = 25
	}
	var highway strings.Builder
	types := filters.TrailTypes
	if len(types) == 0 {
		types = []string{"path", "footway", "track", "bridleway", "steps"}
	}
	for i, t := range types {
		if i > 0 {
			highway.WriteByte('|')
		}
		highway.WriteString(t)
	}
	bounds := fmt.Sprintf("%f,%f,%f,%f", bbox.MinLat, bbox.MinLng, bbox.MaxLat, bbox.MaxLng)
	return fmt.Sprintf(`[out:xml][timeout:%d];way["highway"~"^(%s)$"](%s);(._;>;);out body;`,
		timeout, highway.String(), bounds)
}

func waysToTrails(doc *osm.OSM, filters Filters, bbox BBox) []*core.Trail {
	nodes := make(map[osm.NodeID]osm.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes[n.ID] = *n
	}

	excluded := make(map[string]bool, len(filters.ExcludeSurfaces))
	for _, s := range filters.ExcludeSurfaces {
		excluded[s] = true
	}

	limit := filters.MaxTrailsPerRequest
	out := make([]*core.Trail, 0, len(doc.Ways))
	for _, w := range doc.Ways {
		if limit > 0 && len(out) >= limit {
			break
		}
		surface := w.Tags.Find("surface")
		if excluded[surface] {
			continue
		}

		pts := make([]geom.Point3, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			n, ok := nodes[wn.ID]
			if !ok {
				pts = nil
				break
			}
			pts = append(pts, geom.Point3{Lng: n.Lon, Lat: n.Lat})
		}
		if len(pts) < 2 {
			continue
		}

		trail, err := core.NewTrail(w.Tags.Find("name"), regionLabel(bbox), geom.Line3{Points: pts})
		if err != nil {
			continue
		}
		trail.SourceID = "osm:way:" + strconv.FormatInt(int64(w.ID), 10)
		trail.Surface = mapSurface(surface)
		trail.TrailType = mapTrailType(w.Tags.Find("highway"))
		trail.Tags = tagsToBag(w.Tags)
		out = append(out, trail)
	}
	return out
}

func regionLabel(bbox BBox) string {
	return fmt.Sprintf("bbox:%.4f,%.4f,%.4f,%.4f", bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat)
}

func tagsToBag(tags osm.Tags) core.TagBag {
	bag := make(core.TagBag, len(tags))
	for _, t := range tags {
		bag[t.Key] = t.Value
	}
	return bag
}

func mapSurface(s string) core.Surface {
	switch s {
	case "paved", "asphalt", "concrete":
		return core.SurfacePaved
	case "gravel", "fine_gravel", "compacted":
		return core.SurfaceGravel
	case "dirt", "earth", "ground":
		return core.SurfaceDirt
	case "sand":
		return core.SurfaceSand
	case "wood", "boardwalk":
		return core.SurfaceBoardwalk
	case "rock":
		return core.SurfaceRock
	default:
		return core.SurfaceUnknown
	}
}

func mapTrailType(highway string) core.TrailType {
	switch highway {
	case "footway", "path", "steps":
		return core.TrailTypeHiking
	case "cycleway":
		return core.TrailTypeBiking
	case "bridleway":
		return core.TrailTypeEquestrian
	case "track":
		return core.TrailTypeMultiUse
	default:
		return core.TrailTypeUnknown
	}
}
