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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store scoped to one collection.
type Store struct {
	db         *sql.DB
	path       string
	collection string
}

// NewStore opens (or creates) the database at path and scopes it to collection.
func NewStore(path, collection string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", domain.ErrInvalidInput)
	}
	if collection == "" {
		collection = domain.DefaultCollectionName
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrStoreUnavailable, err)
		}
	}

	// WAL mode with a busy timeout
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path, collection: collection}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Name returns "sqlite".
func (s *Store) Name() string {
	return domain.StoreSQLite
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vectors.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Heartbeat pings the database.
func (s *Store) Heartbeat(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: sqlite: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// EnsureCollection creates the collection row, deleting it and its records first when reset is set.
func (s *Store) EnsureCollection(ctx context.Context, reset bool) error {
	if reset {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.collection); err != nil {
			return fmt.Errorf("sqlite: reset records: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", s.collection); err != nil {
			return fmt.Errorf("sqlite: reset collection: %w", err)
		}
	}

	meta, err := json.Marshal(map[string]string{"description": "Procurement documents and web pages"})
	if err != nil {
		return fmt.Errorf("marshalling collection metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO collections (name, metadata) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		s.collection, string(meta))
	if err != nil {
		return fmt.Errorf("sqlite: create collection: %w", err)
	}
	return nil
}

// Upsert inserts or replaces records in a single transaction.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx, false); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, text, metadata, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
		meta, err := marshalMetadata(r.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, s.collection, r.ID, r.Text, meta,
			float32SliceToBytes(r.Embedding), len(r.Embedding)); err != nil {
			return fmt.Errorf("sqlite: upsert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Query scans the collection and returns the k records nearest to embedding.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, metadata, embedding FROM records WHERE collection = ? ORDER BY rowid",
		s.collection)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		var r domain.Record
		var meta string
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		if r.Metadata, err = unmarshalMetadata(meta); err != nil {
			return nil, err
		}
		results = append(results, domain.QueryResult{
			Record:   r,
			Distance: domain.CosineDistance(embedding, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Get returns matching records in insertion order.
func (s *Store) Get(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	query := strings.Builder{}
	query.WriteString("SELECT id, text, metadata FROM records WHERE collection = ?")
	args := []any{s.collection}

	keys := make([]string, 0, len(filter.Where))
	for k := range filter.Where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query.WriteString(" AND json_extract(metadata, ?) = ?")
		args = append(args, jsonPath(k), filter.Where[k])
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" ORDER BY rowid LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get: %w", err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		var meta string
		if err := rows.Scan(&r.ID, &r.Text, &meta); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		if r.Metadata, err = unmarshalMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate: %w", err)
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection = ?", s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

// jsonPath quotes a metadata key for json_extract.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func marshalMetadata(md map[string]string) (string, error) {
	if md == nil {
		md = map[string]string{}
	}
	b, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(b), nil
}

func unmarshalMetadata(s string) (map[string]string, error) {
	md := map[string]string{}
	if err := json.Unmarshal([]byte(s), &md); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return md, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
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

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
