package driving

import (
	"context"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// CollectionService manages collections and their documents.
type CollectionService interface {
	// List returns every collection with its documents.
	List(ctx context.Context) ([]domain.CollectionSummary, error)

	// Info returns statistics for one collection.
	Info(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// DeleteDocument removes a document and all its chunks from a
	// collection.
	DeleteDocument(ctx context.Context, collection, documentID string) error
}
