// Package sqlite provides the SQLite-backed implementation of the chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The store is the single
// owner of durable chunk state; all per-document mutation runs inside one SQL
// transaction so readers never observe a partial chunk set.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Embedding vectors are persisted as little-endian
// float32 BLOBs; keywords as a JSON array in a TEXT column.
//
// # Data Location
//
// By default, the database is stored at ~/.semdex/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
