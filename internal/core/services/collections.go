package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService exposes the collection management surface over the
// vector store.
type CollectionService struct {
	store driven.VectorStore
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store driven.VectorStore) *CollectionService {
	return &CollectionService{store: store}
}

// List returns every collection with its documents.
func (s *CollectionService) List(ctx context.Context) ([]domain.CollectionSummary, error) {
	summaries, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return summaries, nil
}

// Info returns statistics for one collection.
func (s *CollectionService) Info(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	return s.store.CollectionInfo(ctx, name)
}

// DeleteDocument removes a document and all its chunks.
func (s *CollectionService) DeleteDocument(ctx context.Context, collection, documentID string) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("%w: collection and document id are required", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, collection, documentID)
}
