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

	"github.com/dochaven/docq-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docq/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docq", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
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

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Insert stores a document's chunks, replacing any prior version of the
// document. A changed file carries a new document ID, so prior versions
// are matched by filename as well. The whole re-index runs in one
// transaction.
func (s *Store) Insert(ctx context.Context, collection string, doc domain.Document, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Remove any prior version of this document, whether it shares the
	// ID or only the filename. Chunks cascade.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND (id = ? OR filename = ?)",
		collection, doc.ID, doc.Filename); err != nil {
		return fmt.Errorf("deleting prior document: %w", err)
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, collection, filename, created_at)
		VALUES (?, ?, ?, ?)
	`, doc.ID, collection, doc.Filename, createdAt); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, document_id, content, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, collection, chunk.DocumentID,
			chunk.Text, chunk.Index, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Delete removes a document and its chunks from a collection.
func (s *Store) Delete(ctx context.Context, collection, documentID string) error {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		// Deleting from a collection that never existed is a no-op.
		return nil
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, documentID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %q in collection %q: %w",
			documentID, collection, domain.ErrDocumentNotFound)
	}
	return nil
}

// Search returns up to topK chunks ranked by cosine similarity mapped
// into [0,1], ties broken by ascending chunk position.
func (s *Store) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int, strict bool) ([]domain.QueryResult, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		if strict {
			return nil, fmt.Errorf("collection %q: %w", collection, domain.ErrCollectionNotFound)
		}
		return []domain.QueryResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, position, embedding, metadata
		FROM chunks WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		result   domain.QueryResult
		position int
	}

	var candidates []scored
	for rows.Next() {
		var content string
		var position int
		var embeddingBlob []byte
		var metadataJSON sql.NullString

		if err := rows.Scan(&content, &position, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		embedding := bytesToFloat32Slice(embeddingBlob)
		score := normalisedCosine(queryEmbedding, embedding)

		var metadata map[string]any
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
			}
		}

		candidates = append(candidates, scored{
			result: domain.QueryResult{
				Chunk:           content,
				Metadata:        metadata,
				SimilarityScore: score,
			},
			position: position,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].result.SimilarityScore != candidates[j].result.SimilarityScore {
			return candidates[i].result.SimilarityScore > candidates[j].result.SimilarityScore
		}
		return candidates[i].position < candidates[j].position
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]domain.QueryResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

// ListCollections returns every collection with its documents.
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, id, filename
		FROM documents
		ORDER BY collection, filename
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*domain.CollectionSummary)
	var order []string
	for rows.Next() {
		var collection, docID, filename string
		if err := rows.Scan(&collection, &docID, &filename); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		summary, ok := byName[collection]
		if !ok {
			summary = &domain.CollectionSummary{Name: collection}
			byName[collection] = summary
			order = append(order, collection)
		}
		summary.Documents = append(summary.Documents, domain.DocumentRef{
			DocumentID: docID,
			Filename:   filename,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	summaries := make([]domain.CollectionSummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, *byName[name])
	}
	return summaries, nil
}

// CollectionInfo returns chunk and document counts for a collection.
func (s *Store) CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	exists, err := s.collectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrCollectionNotFound)
	}

	info := &domain.CollectionInfo{Name: name}

	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", name)
	if err := row.Scan(&info.DocumentCount); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", name)
	if err := row.Scan(&info.ChunkCount); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	return info, nil
}

// collectionExists reports whether a collection holds any documents.
func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return count > 0, nil
}

// ==================== Helper Functions ====================

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

// normalisedCosine computes cosine similarity mapped from [-1,1] into
// [0,1]. Mismatched or zero vectors score 0.
func normalisedCosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cosine + 1) / 2
}
