// Package sqlite provides a vector store backed by a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Records for every collection live in one table; embeddings are stored as
// little-endian float32 blobs and queries compute cosine distance in Go.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
