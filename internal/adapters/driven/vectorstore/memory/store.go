// Package memory provides an in-memory implementation of the
// VectorStore port, used in tests and as a zero-setup default.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// collection holds one named namespace of documents and chunks.
type collection struct {
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // keyed by document ID
}

// Store is an in-memory vector store guarded by a single RWMutex, so a
// document's delete-then-insert is atomic with respect to searches.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates a new in-memory vector store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

// Insert stores a document's chunks, replacing any prior version of the
// document. A changed file carries a new document ID, so prior versions
// are matched by filename as well.
func (s *Store) Insert(_ context.Context, name string, doc domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		col = &collection{
			documents: make(map[string]domain.Document),
			chunks:    make(map[string][]domain.Chunk),
		}
		s.collections[name] = col
	}

	for id, prior := range col.documents {
		if prior.Filename == doc.Filename && id != doc.ID {
			delete(col.documents, id)
			delete(col.chunks, id)
		}
	}

	col.documents[doc.ID] = doc
	col.chunks[doc.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// Delete removes a document and its chunks from a collection.
func (s *Store) Delete(_ context.Context, name, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		// Deleting from a collection that never existed is a no-op.
		return nil
	}

	if _, ok := col.documents[documentID]; !ok {
		return fmt.Errorf("document %q in collection %q: %w",
			documentID, name, domain.ErrDocumentNotFound)
	}

	delete(col.documents, documentID)
	delete(col.chunks, documentID)
	return nil
}

// Search returns up to topK chunks ranked by cosine similarity mapped
// into [0,1], ties broken by ascending chunk position.
func (s *Store) Search(_ context.Context, name string, queryEmbedding []float32, topK int, strict bool) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		if strict {
			return nil, fmt.Errorf("collection %q: %w", name, domain.ErrCollectionNotFound)
		}
		return []domain.QueryResult{}, nil
	}

	type scored struct {
		result   domain.QueryResult
		position int
	}

	var candidates []scored
	for _, chunks := range col.chunks {
		for _, chunk := range chunks {
			candidates = append(candidates, scored{
				result: domain.QueryResult{
					Chunk:           chunk.Text,
					Metadata:        chunk.Metadata,
					SimilarityScore: normalisedCosine(queryEmbedding, chunk.Embedding),
				},
				position: chunk.Index,
			})
		}
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
func (s *Store) ListCollections(_ context.Context) ([]domain.CollectionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name, col := range s.collections {
		if len(col.documents) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	summaries := make([]domain.CollectionSummary, 0, len(names))
	for _, name := range names {
		col := s.collections[name]

		refs := make([]domain.DocumentRef, 0, len(col.documents))
		for _, doc := range col.documents {
			refs = append(refs, domain.DocumentRef{
				DocumentID: doc.ID,
				Filename:   doc.Filename,
			})
		}
		sort.Slice(refs, func(i, j int) bool {
			return refs[i].Filename < refs[j].Filename
		})

		summaries = append(summaries, domain.CollectionSummary{
			Name:      name,
			Documents: refs,
		})
	}
	return summaries, nil
}

// CollectionInfo returns chunk and document counts for a collection.
func (s *Store) CollectionInfo(_ context.Context, name string) (*domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok || len(col.documents) == 0 {
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrCollectionNotFound)
	}

	info := &domain.CollectionInfo{
		Name:          name,
		DocumentCount: len(col.documents),
	}
	for _, chunks := range col.chunks {
		info.ChunkCount += len(chunks)
	}
	return info, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
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
