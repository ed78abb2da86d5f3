package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/shaydu/carthorse/geom"
)

//go:embed schema.sql
var schemaSQL string

// Options configures Workspace.Open.
type Options struct {
	// Dir is the directory a per-run temp database file is created in.
	// Empty means os.TempDir(). Ignored when InMemory is set.
	Dir string

	// InMemory opens an in-process SQLite database instead of a temp
	// file, for tests and short-lived callers that never need to hand
	// the file to another process.
	InMemory bool
}

// Workspace is the staging workspace of spec §4.2: one pipeline run's
// mutable Trail/Vertex/Edge/Recommendation tables plus a spatial index
// over trail geometries.
type Workspace struct {
	db       *sql.DB
	path     string
	region   string
	trailIdx *geom.Index

	mu           sync.RWMutex
	frozen       bool
	savepointSeq int64
}

// Open creates a fresh workspace for region, applies the schema, and
// builds an empty spatial index. The workspace owns its underlying file
// (or in-memory database) until Drop is called.
func Open(region string, opts Options) (*Workspace, error) {
	path := ":memory:"
	if !opts.InMemory {
		dir := opts.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		f, err := os.CreateTemp(dir, fmt.Sprintf("carthorse-%s-*.db", region))
		if err != nil {
			return nil, fmt.Errorf("store: create temp file: %w", err)
		}
		path = f.Name()
		_ = f.Close()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// SAVEPOINT/RELEASE/ROLLBACK TO are connection-local state; pin the
	// pool to one connection so Snapshot/Rollback always land on the
	// connection that opened them. :memory: databases need this anyway,
	// since each connection otherwise sees its own empty database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &Workspace{
		db:       db,
		path:     path,
		region:   region,
		trailIdx: geom.NewIndex(),
	}, nil
}

// Region returns the workspace's region tag.
func (w *Workspace) Region() string { return w.region }

// Frozen reports whether Freeze has been called.
func (w *Workspace) Frozen() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frozen
}

// Freeze transitions the workspace to read-only for its Trail table:
// after Freeze, only the L2/L3-derived tables (vertices, edges,
// recommendations) may be written.
func (w *Workspace) Freeze() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frozen {
		return ErrAlreadyFrozen
	}
	if _, err := w.db.Exec(`UPDATE trails SET frozen = 1`); err != nil {
		return fmt.Errorf("store: freeze: %w", err)
	}
	w.frozen = true
	return nil
}

// Close releases the underlying database handle without deleting the
// backing file. Use Drop to tear the workspace down completely.
func (w *Workspace) Close() error {
	return w.db.Close()
}

// Drop tears down the workspace: closes the database and removes its
// backing file (a no-op for in-memory workspaces). All derived data is
// discarded.
func (w *Workspace) Drop() error {
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if w.path == ":memory:" {
		return nil
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", filepath.Base(w.path), err)
	}
	return nil
}

// Snapshot opens a new nested transactional boundary via SQLite
// SAVEPOINT and returns its handle for a matching Release/Rollback.
func (w *Workspace) Snapshot() (*Snapshot, error) {
	id := atomic.AddInt64(&w.savepointSeq, 1)
	name := fmt.Sprintf("sp_%d", id)
	if _, err := w.db.Exec("SAVEPOINT " + name); err != nil {
		return nil, fmt.Errorf("store: savepoint %s: %w", name, err)
	}
	return &Snapshot{ws: w, name: name}, nil
}

// Snapshot is one nested transactional boundary, the unit §4.2 assigns
// to individual L1 steps.
type Snapshot struct {
	ws   *Workspace
	name string
	done bool
}

// Release commits the snapshot's changes into its parent scope.
func (s *Snapshot) Release() error {
	if s.done {
		return nil
	}
	s.done = true
	_, err := s.ws.db.Exec("RELEASE " + s.name)
	return err
}

// Rollback discards every change made since the snapshot was opened.
func (s *Snapshot) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if _, err := s.ws.db.Exec("ROLLBACK TO " + s.name); err != nil {
		return err
	}
	_, err := s.ws.db.Exec("RELEASE " + s.name)
	return err
}
