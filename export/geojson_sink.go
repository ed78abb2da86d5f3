package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shaydu/carthorse/geom"
)

// RecordKind selects which of Result's collections a GeoJSONSink emits.
// GeoJSON has no native multi-table shape, so one sink writes one kind;
// exporting everything means driving three sinks.
type RecordKind int

const (
	KindTrails RecordKind = iota
	KindEdges
	KindRecommendations
)

// GeoJSONSink writes one RFC 7946 FeatureCollection to Path. There is no
// GeoJSON library in the dependency pack this module draws on and RFC 7946
// is a thin enough format that hand-rolling it over encoding/json is the
// pragmatic choice (see DESIGN.md).
type GeoJSONSink struct {
	Path string
	Kind RecordKind
}

func (GeoJSONSink) isSink() {}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func lineGeometry(l geom.Line3) geoJSONGeometry {
	return geoJSONGeometry{Type: "LineString", Coordinates: pointsOf(l)}
}

func writeGeoJSON(result Result, sink GeoJSONSink) error {
	fc := geoJSONFeatureCollection{Type: "FeatureCollection"}

	switch sink.Kind {
	case KindTrails:
		for _, t := range result.Trails {
			fc.Features = append(fc.Features, geoJSONFeature{
				Type:     "Feature",
				Geometry: lineGeometry(t.Geometry),
				Properties: map[string]interface{}{
					"uuid":       t.UUID.String(),
					"name":       t.Name,
					"region":     t.Region,
					"length_km":  t.LengthKM,
					"surface":    t.Surface.String(),
					"trail_type": t.TrailType.String(),
					"difficulty": t.Difficulty.String(),
				},
			})
		}
	case KindEdges:
		for _, e := range result.Edges {
			fc.Features = append(fc.Features, geoJSONFeature{
				Type:     "Feature",
				Geometry: lineGeometry(e.Geometry),
				Properties: map[string]interface{}{
					"id":        int64(e.ID),
					"source":    int64(e.Source),
					"target":    int64(e.Target),
					"length_km": e.LengthKM,
					"gain_m":    e.GainM,
					"loss_m":    e.LossM,
					"state":     int(e.State),
				},
			})
		}
	case KindRecommendations:
		for _, r := range result.Recommendations {
			fc.Features = append(fc.Features, geoJSONFeature{
				Type:     "Feature",
				Geometry: lineGeometry(r.Geometry),
				Properties: map[string]interface{}{
					"uuid":       r.UUID.String(),
					"pattern":    r.Pattern.Name,
					"score":      r.Score,
					"similarity": r.Similarity,
				},
			})
		}
	default:
		return fmt.Errorf("export: unknown record kind %d", sink.Kind)
	}

	f, err := os.Create(sink.Path)
	if err != nil {
		return fmt.Errorf("export: create geojson sink: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
