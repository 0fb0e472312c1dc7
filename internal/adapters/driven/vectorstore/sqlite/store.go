// Package sqlite provides a SQLite-backed vector store.
//
// Embeddings are stored as little-endian float32 blobs and similarity
// search runs in-process with cosine distance. This keeps indexes fully
// local with no external service to run, at the cost of a full scan per
// query, which is fine for document collections of this size.
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

	"github.com/scholarch/scholarch-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// VectorStore is a SQLite-backed vector store.
type VectorStore struct {
	db   *sql.DB
	path string
}

// NewVectorStore creates a SQLite vector store at the specified data
// directory. If dataDir is empty, defaults to ~/.scholarch/data/vectors.db.
func NewVectorStore(dataDir string) (*VectorStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".scholarch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &VectorStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(fsys embed.FS) error {
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
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

// EnsureCollection creates the collection if it does not exist. An
// existing collection built with a different embedding model returns
// domain.ErrModelMismatch.
func (s *VectorStore) EnsureCollection(ctx context.Context, name, embeddingModel string) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding_model FROM collections WHERE name = ?", name).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO collections (name, embedding_model) VALUES (?, ?)",
			name, embeddingModel); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("looking up collection: %w", err)
	}

	if existing != embeddingModel {
		return fmt.Errorf("collection %q built with %q, requested %q: %w",
			name, existing, embeddingModel, domain.ErrModelMismatch)
	}
	return nil
}

// DeleteCollection removes a collection and all of its entries.
func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

// Upsert stores entries in the collection, replacing entries with the
// same ID.
func (s *VectorStore) Upsert(ctx context.Context, collection string, entries []driven.Entry) error {
	if err := s.requireCollection(ctx, collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, document, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		metadataJSON := []byte(jsonNull)
		if entry.Metadata != nil {
			metadataJSON, err = json.Marshal(entry.Metadata)
			if err != nil {
				return fmt.Errorf("marshalling entry metadata: %w", err)
			}
		}

		embeddingBlob := float32SliceToBytes(entry.Embedding)

		if _, err := stmt.ExecContext(ctx, collection, entry.ID, entry.Document,
			embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to topK entries ranked by cosine distance to the
// vector. A non-nil filter restricts results to entries whose metadata
// matches it exactly.
func (s *VectorStore) Query(ctx context.Context, collection string, vector []float32, topK int, filter *domain.Filter) ([]driven.Hit, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, embedding, metadata
		FROM chunks WHERE collection = ?
		ORDER BY rowid
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var (
			hit           driven.Hit
			embeddingBlob []byte
			metadataJSON  string
		)
		if err := rows.Scan(&hit.ID, &hit.Document, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		if metadataJSON != "" && metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &hit.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling entry metadata: %w", err)
			}
		}

		if filter != nil && !matchesFilter(hit.Metadata, filter) {
			continue
		}

		hit.Distance = cosineDistance(vector, bytesToFloat32Slice(embeddingBlob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// requireCollection returns domain.ErrNotFound if the collection does
// not exist.
func (s *VectorStore) requireCollection(ctx context.Context, name string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM collections WHERE name = ?", name).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up collection: %w", err)
	}
	return nil
}

// matchesFilter reports whether metadata satisfies the filter. Values
// are compared by their string form so numeric metadata matches string
// filter values. A missing key never matches.
func matchesFilter(metadata map[string]any, filter *domain.Filter) bool {
	value, ok := metadata[filter.Key]
	if !ok {
		return false
	}
	return fmt.Sprintf("%v", value) == filter.Value
}

// cosineDistance returns 1 minus the cosine similarity of a and b.
// Mismatched or zero-magnitude vectors get the maximum distance 2.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if floats == nil {
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
