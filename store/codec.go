package store

import (
	"encoding/json"

	"github.com/shaydu/carthorse/geom"
)

// wirePoint is geom.Point3's on-disk shape. Kept separate from Point3
// itself so a change to the in-memory struct's field tags never silently
// changes the stored format.
type wirePoint struct {
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
	HasZ bool    `json:"has_z,omitempty"`
	Z    float64 `json:"z,omitempty"`
}

func encodeLine(l geom.Line3) ([]byte, error) {
	pts := make([]wirePoint, len(l.Points))
	for i, p := range l.Points {
		pts[i] = wirePoint{Lng: p.Lng, Lat: p.Lat, HasZ: p.HasZ, Z: p.Z}
	}
	return json.Marshal(pts)
}

func decodeLine(data []byte) (geom.Line3, error) {
	var pts []wirePoint
	if err := json.Unmarshal(data, &pts); err != nil {
		return geom.Line3{}, err
	}
	out := make([]geom.Point3, len(pts))
	for i, p := range pts {
		out[i] = geom.Point3{Lng: p.Lng, Lat: p.Lat, HasZ: p.HasZ, Z: p.Z}
	}
	return geom.Line3{Points: out}, nil
}
