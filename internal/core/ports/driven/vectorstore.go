package driven

import (
	"context"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// VectorStore persists chunk vectors grouped into named collections
// and supports similarity search. Collections are created implicitly
// on first insert.
//
// Implementations must support concurrent readers and writers across
// independent collections. Within one collection, a document's
// delete-then-insert re-indexing must be atomic with respect to
// concurrent Search calls: a search never observes a half-deleted
// document.
type VectorStore interface {
	// Insert stores a document's chunks with their embeddings.
	// Idempotent per document ID within a collection, and a changed
	// file replaces its previous version: prior chunks for the same ID
	// or the same filename are removed before the new set is added, so
	// no stale chunks survive a re-ingest.
	Insert(ctx context.Context, collection string, doc domain.Document, chunks []domain.Chunk) error

	// Delete removes all chunks of a document. Returns
	// domain.ErrDocumentNotFound when the document is absent from an
	// existing collection; succeeds as a no-op when the collection
	// itself does not exist.
	Delete(ctx context.Context, collection, documentID string) error

	// Search returns up to topK chunks ranked by descending cosine
	// similarity mapped into [0,1], ties broken by ascending chunk
	// ordinal. A missing collection yields an empty result set, or
	// domain.ErrCollectionNotFound when strict is set.
	Search(ctx context.Context, collection string, queryEmbedding []float32, topK int, strict bool) ([]domain.QueryResult, error)

	// ListCollections returns every collection with its deduplicated
	// {document, filename} pairs.
	ListCollections(ctx context.Context) ([]domain.CollectionSummary, error)

	// CollectionInfo returns chunk and document counts. Returns
	// domain.ErrCollectionNotFound when the collection is absent.
	CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}
