package export

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/shaydu/carthorse/geom"
)

//go:embed export_schema.sql
var exportSchemaSQL string

// SQLiteSink writes a Result into a fresh SQLite file at Path, using the
// same table names as the staging workspace (store package) with a reduced
// column set: trails carry no geometry, bbox or elevation stats, edge
// geometry is JSON text, and recommendations carry no edges, metrics or
// geometry.
type SQLiteSink struct {
	Path string
}

func (SQLiteSink) isSink() {}

func writeSQLite(result Result, sink SQLiteSink) error {
	db, err := sql.Open("sqlite", sink.Path)
	if err != nil {
		return fmt.Errorf("export: open sqlite sink: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(exportSchemaSQL); err != nil {
		return fmt.Errorf("export: apply schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	trailStmt, err := tx.Prepare(`INSERT INTO trails (uuid, name, region, length_km, surface, trail_type, difficulty) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("export: prepare trails: %w", err)
	}
	for _, t := range result.Trails {
		if _, err := trailStmt.Exec(t.UUID.String(), t.Name, t.Region, t.LengthKM, int(t.Surface), int(t.TrailType), int(t.Difficulty)); err != nil {
			return fmt.Errorf("export: insert trail %s: %w", t.UUID, err)
		}
	}

	vertexStmt, err := tx.Prepare(`INSERT INTO vertices (id, lng, lat, has_z, elevation, kind) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("export: prepare vertices: %w", err)
	}
	for _, v := range result.Vertices {
		if _, err := vertexStmt.Exec(int64(v.ID), v.Pos.Lng, v.Pos.Lat, v.Pos.HasZ, v.Pos.Z, int(v.Kind)); err != nil {
			return fmt.Errorf("export: insert vertex %d: %w", v.ID, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO edges (id, source_id, target_id, trail_uuid, geometry, length_km, gain_m, loss_m, state) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("export: prepare edges: %w", err)
	}
	for _, e := range result.Edges {
		geomJSON, err := json.Marshal(pointsOf(e.Geometry))
		if err != nil {
			return fmt.Errorf("export: encode edge geometry %d: %w", e.ID, err)
		}
		if _, err := edgeStmt.Exec(int64(e.ID), int64(e.Source), int64(e.Target), e.TrailUUID.String(), string(geomJSON), e.LengthKM, e.GainM, e.LossM, int(e.State)); err != nil {
			return fmt.Errorf("export: insert edge %d: %w", e.ID, err)
		}
	}

	recStmt, err := tx.Prepare(`INSERT INTO recommendations (uuid, pattern, score, similarity, fingerprint) VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("export: prepare recommendations: %w", err)
	}
	for _, r := range result.Recommendations {
		if _, err := recStmt.Exec(r.UUID.String(), r.Pattern.Name, r.Score, r.Similarity, r.Fingerprint); err != nil {
			return fmt.Errorf("export: insert recommendation %s: %w", r.UUID, err)
		}
	}

	return tx.Commit()
}

func pointsOf(l geom.Line3) [][]float64 {
	out := make([][]float64, len(l.Points))
	for i, p := range l.Points {
		if p.HasZ {
			out[i] = []float64{p.Lng, p.Lat, p.Z}
		} else {
			out[i] = []float64{p.Lng, p.Lat}
		}
	}
	return out
}
