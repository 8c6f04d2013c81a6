package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/semdex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
)

// Store is the SQLite-backed chunk store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.semdex/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".semdex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// InsertChunks stores the chunks of a newly indexed document.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.SemanticChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertChunksTx(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceChunks atomically swaps a document's chunk set. The delete and
// all inserts share one transaction; any failure rolls the whole swap back
// and leaves the previous chunk set intact.
func (s *Store) ReplaceChunks(ctx context.Context, sourceFile string, chunks []domain.SemanticChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_file = ?", sourceFile); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}

	if err := insertChunksTx(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteChunks removes all chunks for sourceFile.
func (s *Store) DeleteChunks(ctx context.Context, sourceFile string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE source_file = ?", sourceFile)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return deleted, nil
}

// ListChunks returns chunks matching the filter, ordered by source file
// and chunk index.
func (s *Store) ListChunks(ctx context.Context, filter driven.ChunkFilter) ([]domain.SemanticChunk, error) {
	query := `
		SELECT id, source_file, file_hash, chunk_index, total_chunks,
			sentence_start, sentence_end, content, embedding, avg_similarity,
			title, category, keywords, word_count, char_count, created_at, updated_at
		FROM chunks
	`

	var conditions []string
	var args []any
	if filter.SourceFile != "" {
		conditions = append(conditions, "source_file = ?")
		args = append(args, filter.SourceFile)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category.String())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY source_file, chunk_index"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.SemanticChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// FileHashes returns the recorded content hash per source file.
func (s *Store) FileHashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_file, MAX(file_hash) FROM chunks GROUP BY source_file
	`)
	if err != nil {
		return nil, fmt.Errorf("querying file hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, fileHash string
		if err := rows.Scan(&sourceFile, &fileHash); err != nil {
			return nil, fmt.Errorf("scanning file hash: %w", err)
		}
		hashes[sourceFile] = fileHash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file hashes: %w", err)
	}

	return hashes, nil
}

// CountChunks returns the total number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// insertChunksTx inserts chunks within an open transaction.
func insertChunksTx(ctx context.Context, tx *sql.Tx, chunks []domain.SemanticChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_file, file_hash, chunk_index, total_chunks,
			sentence_start, sentence_end, content, embedding, avg_similarity,
			title, category, keywords, word_count, char_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		keywordsJSON, err := json.Marshal(chunk.Metadata.Keywords)
		if err != nil {
			return fmt.Errorf("marshalling keywords: %w", err)
		}

		var category sql.NullString
		if chunk.Metadata.Category != nil {
			category = sql.NullString{String: chunk.Metadata.Category.String(), Valid: true}
		}

		createdAt := chunk.Metadata.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		updatedAt := chunk.Metadata.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}

		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.SourceFile, chunk.Metadata.FileHash,
			chunk.ChunkIndex, chunk.TotalChunks,
			chunk.SentenceRange.Start, chunk.SentenceRange.End,
			chunk.Content, float32SliceToBytes(chunk.Embedding), chunk.AvgSimilarity,
			chunk.Metadata.Title, category, string(keywordsJSON),
			chunk.Metadata.WordCount, chunk.Metadata.CharCount,
			createdAt, updatedAt,
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.SemanticChunk, error) {
	var chunk domain.SemanticChunk
	var embeddingBlob []byte
	var category sql.NullString
	var keywordsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&chunk.ID, &chunk.SourceFile, &chunk.Metadata.FileHash,
		&chunk.ChunkIndex, &chunk.TotalChunks,
		&chunk.SentenceRange.Start, &chunk.SentenceRange.End,
		&chunk.Content, &embeddingBlob, &chunk.AvgSimilarity,
		&chunk.Metadata.Title, &category, &keywordsJSON,
		&chunk.Metadata.WordCount, &chunk.Metadata.CharCount,
		&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	embedding, err := bytesToFloat32Slice(embeddingBlob)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
	}
	chunk.Embedding = embedding
	chunk.Metadata.SourceFile = chunk.SourceFile

	if category.Valid {
		c := domain.Category(category.String)
		chunk.Metadata.Category = &c
	}

	if keywordsJSON != "" {
		if err := json.Unmarshal([]byte(keywordsJSON), &chunk.Metadata.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshaling keywords: %w", err)
		}
	}

	if createdAt.Valid {
		chunk.Metadata.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		chunk.Metadata.UpdatedAt = updatedAt.Time
	}

	return &chunk, nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice
// for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a stored byte slice back to []float32.
// A length not divisible by four means the blob is corrupt.
func bytesToFloat32Slice(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: blob length %d not divisible by 4", domain.ErrEmbeddingParse, len(data))
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}
