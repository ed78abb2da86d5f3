// Package store is the staging workspace of spec §4.2: the mutable home
// for one pipeline run's Trails, Vertices, Edges, and
// RouteRecommendations, plus the spatial index L1/L2/L3 query against.
//
// Workspace wraps a *sql.DB backed by modernc.org/sqlite (grounded on
// internal/db.DB in the pack's velocity.report repo — same
// sql.Open("sqlite", path), same embedded schema.sql-on-open, same
// PRAGMA tuning), with an in-memory geom.Index over trail envelopes
// rebuilt incrementally on every insert rather than recomputed from the
// table, so query_by_bbox/query_dwithin stay O(log n) instead of O(n)
// per call.
//
// Nested transactional boundaries (Snapshot/Rollback) are SQLite
// SAVEPOINTs rather than a second connection or an in-process diff log —
// the database already gives us atomic, nested rollback for free.
package store
