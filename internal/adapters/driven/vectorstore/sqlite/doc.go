// Package sqlite provides a SQLite-backed implementation of the
// VectorStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Embeddings are
// stored as little-endian float32 blobs; similarity is computed in Go at
// query time, which is plenty fast for the collection sizes a local CLI
// handles.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docq/data/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode; document re-indexing runs in a single
// transaction so searches never observe a half-deleted document.
package sqlite
