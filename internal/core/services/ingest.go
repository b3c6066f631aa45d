package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dochaven/docq-cli/internal/chunker"
	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestService = (*IngestionService)(nil)

// documentNamespace scopes deterministic document IDs.
var documentNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// IngestionService orchestrates extraction, chunking, embedding and
// storage for one document at a time.
type IngestionService struct {
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	store      driven.VectorStore

	defaultChunkSize    int
	defaultChunkOverlap int
}

// NewIngestionService creates a new ingestion service. The extractor
// registry may be nil when only pre-extracted text is ingested.
func NewIngestionService(
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestionService {
	return &IngestionService{
		extractors:          extractors,
		embedder:            embedder,
		store:               store,
		defaultChunkSize:    chunker.DefaultChunkSize,
		defaultChunkOverlap: chunker.DefaultChunkOverlap,
	}
}

// SetChunkDefaults overrides the default chunking parameters applied
// when IngestOptions leaves them zero.
func (s *IngestionService) SetChunkDefaults(size, overlap int) {
	if size > 0 {
		s.defaultChunkSize = size
	}
	if overlap >= 0 {
		s.defaultChunkOverlap = overlap
	}
}

// IngestText ingests already-extracted plain text into a collection.
func (s *IngestionService) IngestText(
	ctx context.Context, collection, filename, text string, opts driving.IngestOptions,
) (*domain.IngestReceipt, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document has no text content", domain.ErrInvalidInput)
	}

	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = s.defaultChunkSize
	}
	chunkOverlap := opts.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = s.defaultChunkOverlap
	}

	docID := DocumentID(filename, text)
	logger.Section("Ingest")
	logger.Debug("Document %s (%s) into collection %q", docID, filename, collection)

	c := chunker.New(chunker.WithChunkSize(chunkSize), chunker.WithOverlap(chunkOverlap))
	chunks, err := c.Split(docID, filename, text)
	if err != nil {
		return nil, err
	}
	logger.Debug("Chunked into %d chunks (size=%d overlap=%d)", len(chunks), chunkSize, chunkOverlap)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding batch failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingProvider, len(vectors), len(chunks))
	}

	want := s.embedder.Dimensions()
	for i, vec := range vectors {
		if want > 0 && len(vec) != want {
			return nil, fmt.Errorf("%w: chunk %d has dimensionality %d, want %d",
				domain.ErrEmbeddingProvider, i, len(vec), want)
		}
		chunks[i].Embedding = vec
	}

	doc := domain.Document{
		ID:         docID,
		Filename:   filename,
		Collection: collection,
		CreatedAt:  time.Now(),
	}

	// Insert is atomic per document: either the full chunk set lands
	// or nothing does. It also retires any prior version of the same
	// filename, so a changed file replaces its previous chunks.
	if err := s.store.Insert(ctx, collection, doc, chunks); err != nil {
		return nil, fmt.Errorf("insert document %s: %w", docID, err)
	}

	logger.Info("Ingested %s: %d chunks into %q", filename, len(chunks), collection)
	return &domain.IngestReceipt{
		Filename:    filename,
		Collection:  collection,
		DocumentID:  docID,
		TotalChunks: len(chunks),
	}, nil
}

// IngestFile extracts text from raw bytes first, then proceeds as
// IngestText.
func (s *IngestionService) IngestFile(
	ctx context.Context, collection string, raw *domain.RawFile, opts driving.IngestOptions,
) (*domain.IngestReceipt, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if s.extractors == nil {
		return nil, fmt.Errorf("%w: no extractors configured", domain.ErrUnsupportedType)
	}

	extractor, err := s.extractors.ForMIMEType(raw.MIMEType)
	if err != nil {
		return nil, err
	}

	text, err := extractor.Extract(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	return s.IngestText(ctx, collection, raw.Name, text, opts)
}

// DocumentID derives the stable document identifier from filename and
// content. Identical re-uploads produce the same ID, making ingestion
// idempotent.
func DocumentID(filename, content string) string {
	return uuid.NewSHA1(documentNamespace, []byte(filename+"\x00"+content)).String()
}
