package driving

import (
	"context"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// IngestOptions configures one ingestion.
type IngestOptions struct {
	// ChunkSize is the chunk length in characters. Zero selects the
	// configured default.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters. Must be smaller than ChunkSize. A negative value
	// selects the configured default; zero disables overlap.
	ChunkOverlap int
}

// IngestService ties extraction, chunking, embedding and storage
// together for a document.
type IngestService interface {
	// IngestText ingests already-extracted plain text into a
	// collection. Identical (filename, content) pairs map to the same
	// document ID, so re-ingestion updates rather than duplicates.
	// All-or-nothing: an embedding failure commits nothing.
	IngestText(ctx context.Context, collection, filename, text string, opts IngestOptions) (*domain.IngestReceipt, error)

	// IngestFile extracts text from raw file bytes first, then
	// proceeds as IngestText.
	IngestFile(ctx context.Context, collection string, raw *domain.RawFile, opts IngestOptions) (*domain.IngestReceipt, error)
}
