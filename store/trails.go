package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/shaydu/carthorse/carterr"
	"github.com/shaydu/carthorse/core"
	"github.com/shaydu/carthorse/geom"
)

// InsertTrails inserts batch atomically: every record is validated
// against §3 invariants and the whole batch is inserted or none is. Bbox,
// length, and (when geometry is 3D) elevation stats are already filled in
// by core.NewTrail/SetGeometry by the time a caller reaches this method;
// InsertTrails re-validates rather than trusting the caller.
func (w *Workspace) InsertTrails(batch []*core.Trail) error {
	w.mu.RLock()
	frozen := w.frozen
	w.mu.RUnlock()
	if frozen {
		return ErrFrozen
	}
	if len(batch) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(batch))
	for _, t := range batch {
		if err := t.Validate(); err != nil {
			return carterr.New(carterr.ValidationFailed, "insert_trails", []string{t.UUID.String()}, err)
		}
		if _, dup := seen[t.UUID]; dup {
			return carterr.New(carterr.Conflict, "insert_trails", []string{t.UUID.String()}, fmt.Errorf("duplicate uuid within batch"))
		}
		seen[t.UUID] = struct{}{}
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trails (
			uuid, source_id, parent_uuid, name, region, geometry,
			length_km, gain_m, loss_m, min_m, avg_m, max_m,
			min_lng, min_lat, max_lng, max_lat,
			surface, trail_type, difficulty, tags_json
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		existing, err := tx.Query(`SELECT 1 FROM trails WHERE uuid = ?`, t.UUID.String())
		if err != nil {
			return fmt.Errorf("store: conflict check: %w", err)
		}
		has := existing.Next()
		existing.Close()
		if has {
			return carterr.New(carterr.Conflict, "insert_trails", []string{t.UUID.String()}, fmt.Errorf("uuid already present"))
		}

		geomBytes, err := encodeLine(t.Geometry)
		if err != nil {
			return fmt.Errorf("store: encode geometry: %w", err)
		}
		tagsJSON, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("store: encode tags: %w", err)
		}
		var parentUUID interface{}
		if t.ParentUUID != nil {
			parentUUID = t.ParentUUID.String()
		}
		var sourceID interface{}
		if t.SourceID != "" {
			sourceID = t.SourceID
		}

		if _, err := stmt.Exec(
			t.UUID.String(), sourceID, parentUUID, t.Name, t.Region, geomBytes,
			t.LengthKM, t.Elevation.GainM, t.Elevation.LossM, t.Elevation.MinM, t.Elevation.AvgM, t.Elevation.MaxM,
			t.BBox.MinLng, t.BBox.MinLat, t.BBox.MaxLng, t.BBox.MaxLat,
			int(t.Surface), int(t.TrailType), int(t.Difficulty), string(tagsJSON),
		); err != nil {
			return fmt.Errorf("store: insert trail %s: %w", t.UUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	for _, t := range batch {
		bound := orb.Bound{
			Min: orb.Point{t.BBox.MinLng, t.BBox.MinLat},
			Max: orb.Point{t.BBox.MaxLng, t.BBox.MaxLat},
		}
		if err := w.trailIdx.Insert(t.UUID.String(), bound); err != nil {
			return fmt.Errorf("store: index trail %s: %w", t.UUID, err)
		}
	}

	return nil
}

// DeleteTrail removes a trail row and its entry in the spatial index. Like
// the other trail mutators it returns ErrFrozen once Freeze has been called.
func (w *Workspace) DeleteTrail(id uuid.UUID) error {
	w.mu.RLock()
	frozen := w.frozen
	w.mu.RUnlock()
	if frozen {
		return ErrFrozen
	}
	if _, err := w.db.Exec(`DELETE FROM trails WHERE uuid = ?`, id.String()); err != nil {
		return fmt.Errorf("store: delete trail %s: %w", id, err)
	}
	w.trailIdx.Delete(id.String())
	return nil
}

// AllTrails returns every trail currently staged, ordered by uuid for
// deterministic iteration. Used by runlifecycle to hand L1/L2 their full
// input set rather than querying the spatial index for a result it
// already knows covers everything.
func (w *Workspace) AllTrails() ([]*core.Trail, error) {
	rows, err := w.db.Query(`SELECT uuid FROM trails ORDER BY uuid`)
	if err != nil {
		return nil, fmt.Errorf("store: query all trails: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan trail uuid: %w", err)
		}
		ids = append(ids, id)
	}
	return w.loadTrails(ids)
}

// ReplaceAllTrails atomically discards every staged trail and inserts
// batch in its place, used once L1 conditioning (spec §4.3) has produced
// its final trail set: L1 runs as a pure function over a []*core.Trail
// snapshot, and this is the single write-back point rather than having
// every L1 step reach into the database.
func (w *Workspace) ReplaceAllTrails(batch []*core.Trail) error {
	w.mu.RLock()
	frozen := w.frozen
	w.mu.RUnlock()
	if frozen {
		return ErrFrozen
	}

	if _, err := w.db.Exec(`DELETE FROM trails`); err != nil {
		return fmt.Errorf("store: clear trails: %w", err)
	}
	w.trailIdx = geom.NewIndex()

	return w.InsertTrails(batch)
}

// QueryByBBox returns every trail whose indexed envelope intersects bbox.
func (w *Workspace) QueryByBBox(bbox core.BBox) ([]*core.Trail, error) {
	ids, err := w.trailIdx.QueryBound(orb.Bound{
		Min: orb.Point{bbox.MinLng, bbox.MinLat},
		Max: orb.Point{bbox.MaxLng, bbox.MaxLat},
	})
	if err != nil {
		return nil, fmt.Errorf("store: query bbox: %w", err)
	}
	return w.loadTrails(ids)
}

// QueryDWithin returns every trail whose indexed envelope lies within
// approximately dist meters of p. Exact geodesic filtering against full
// trail geometry is the caller's responsibility (spec §4.1: the index
// prunes, callers confirm).
func (w *Workspace) QueryDWithin(p geom.Point, dist float64) ([]*core.Trail, error) {
	ids, err := w.trailIdx.QueryDWithin(p, dist)
	if err != nil {
		return nil, fmt.Errorf("store: query dwithin: %w", err)
	}
	return w.loadTrails(ids)
}

func (w *Workspace) loadTrails(ids []string) ([]*core.Trail, error) {
	out := make([]*core.Trail, 0, len(ids))
	for _, id := range ids {
		t, err := w.loadTrail(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (w *Workspace) loadTrail(id string) (*core.Trail, error) {
	row := w.db.QueryRow(`
		SELECT uuid, source_id, parent_uuid, name, region, geometry,
			length_km, gain_m, loss_m, min_m, avg_m, max_m,
			min_lng, min_lat, max_lng, max_lat,
			surface, trail_type, difficulty, tags_json
		FROM trails WHERE uuid = ?`, id)
	return scanTrail(row)
}

func scanTrail(row *sql.Row) (*core.Trail, error) {
	var (
		uuidStr, name, region, tagsJSON string
		sourceID, parentUUID           sql.NullString
		geomBytes                      []byte
		lengthKM, gain, loss, minM, avgM, maxM float64
		minLng, minLat, maxLng, maxLat         float64
		surface, trailType, difficulty         int
	)
	if err := row.Scan(
		&uuidStr, &sourceID, &parentUUID, &name, &region, &geomBytes,
		&lengthKM, &gain, &loss, &minM, &avgM, &maxM,
		&minLng, &minLat, &maxLng, &maxLat,
		&surface, &trailType, &difficulty, &tagsJSON,
	); err != nil {
		return nil, fmt.Errorf("store: scan trail: %w", err)
	}

	line, err := decodeLine(geomBytes)
	if err != nil {
		return nil, fmt.Errorf("store: decode geometry: %w", err)
	}
	var tags core.TagBag
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("store: decode tags: %w", err)
		}
	}

	t := &core.Trail{
		UUID:       uuid.MustParse(uuidStr),
		Name:       name,
		Region:     region,
		Geometry:   line,
		LengthKM:   lengthKM,
		Elevation:  core.ElevationStats{GainM: gain, LossM: loss, MinM: minM, AvgM: avgM, MaxM: maxM},
		BBox:       core.BBox{MinLng: minLng, MinLat: minLat, MaxLng: maxLng, MaxLat: maxLat},
		Surface:    core.Surface(surface),
		TrailType:  core.TrailType(trailType),
		Difficulty: core.Difficulty(difficulty),
		Tags:       tags,
	}
	if sourceID.Valid {
		t.SourceID = sourceID.String
	}
	if parentUUID.Valid {
		id := uuid.MustParse(parentUUID.String)
		t.ParentUUID = &id
	}
	return t, nil
}
