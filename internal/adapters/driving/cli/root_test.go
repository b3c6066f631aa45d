package cli

import (
	"context"
	"fmt"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

// mockIngestService records ingestions.
type mockIngestService struct {
	receipts []domain.IngestReceipt
	err      error
}

func (m *mockIngestService) IngestText(
	ctx context.Context, collection, filename, text string, opts driving.IngestOptions,
) (*domain.IngestReceipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	receipt := domain.IngestReceipt{
		Filename:    filename,
		Collection:  collection,
		DocumentID:  "doc-1",
		TotalChunks: 2,
	}
	m.receipts = append(m.receipts, receipt)
	return &receipt, nil
}

func (m *mockIngestService) IngestFile(
	ctx context.Context, collection string, raw *domain.RawFile, opts driving.IngestOptions,
) (*domain.IngestReceipt, error) {
	return m.IngestText(ctx, collection, raw.Name, string(raw.Content), opts)
}

// mockQueryService returns canned query responses.
type mockQueryService struct {
	retrieval *domain.Retrieval
	response  *domain.QueryResponse
	err       error
}

func (m *mockQueryService) Retrieve(
	ctx context.Context, collection, query string, opts driving.QueryOptions,
) (*domain.Retrieval, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.retrieval != nil {
		return m.retrieval, nil
	}
	return &domain.Retrieval{}, nil
}

func (m *mockQueryService) Ask(
	ctx context.Context, collection, question string, opts driving.QueryOptions,
) (*domain.QueryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.QueryResponse{
		Query:      question,
		Answer:     "The fox is quick and brown.",
		Collection: collection,
		Results: []domain.QueryResult{
			{
				Chunk:           "The quick brown fox jumps over the lazy dog.",
				Metadata:        map[string]any{"filename": "fox.txt", "chunk_index": 0},
				SimilarityScore: 0.91,
			},
		},
		TotalResults: 1,
		AnswerSource: domain.AnswerFromDocuments,
		FoundInDocs:  true,
		Success:      true,
	}, nil
}

// mockCollectionService returns canned collection data.
type mockCollectionService struct {
	summaries []domain.CollectionSummary
	info      *domain.CollectionInfo
	deleted   []string
	err       error
}

func (m *mockCollectionService) List(ctx context.Context) ([]domain.CollectionSummary, error) {
	return m.summaries, m.err
}

func (m *mockCollectionService) Info(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.info != nil {
		return m.info, nil
	}
	return &domain.CollectionInfo{Name: name, DocumentCount: 1, ChunkCount: 3}, nil
}

func (m *mockCollectionService) DeleteDocument(ctx context.Context, collection, documentID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, collection+"/"+documentID)
	return nil
}

// mockConfigStore is an in-memory config store.
type mockConfigStore struct {
	data map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.data[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if b, ok := m.data[key].(bool); ok {
		return b
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/docq-test/config.toml"
}

// mockExtractor returns fixed text for any input.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) SupportedMIMETypes() []string { return []string{"audio/mpeg"} }
func (m *mockExtractor) Priority() int                { return 70 }

func (m *mockExtractor) Extract(ctx context.Context, raw *domain.RawFile) (string, error) {
	return m.text, m.err
}

// mockExtractorRegistry serves one extractor for every MIME type.
type mockExtractorRegistry struct {
	extractor driven.Extractor
	err       error
}

func (m *mockExtractorRegistry) Register(e driven.Extractor) {
	m.extractor = e
}

func (m *mockExtractorRegistry) ForMIMEType(mimeType string) (driven.Extractor, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.extractor == nil {
		return nil, fmt.Errorf("no extractor for %q: %w", mimeType, domain.ErrUnsupportedType)
	}
	return m.extractor, nil
}

// setupTestServices installs mocks and returns a cleanup that restores
// the previous wiring.
func setupTestServices() func() {
	prev := Services{
		Ingest:      ingestService,
		Query:       queryService,
		Collections: collectionService,
		Config:      configStore,
		Extractors:  extractorRegistry,
	}

	SetServices(Services{
		Ingest:      &mockIngestService{},
		Query:       &mockQueryService{},
		Collections: &mockCollectionService{},
		Config:      newMockConfigStore(),
		Extractors:  &mockExtractorRegistry{extractor: &mockExtractor{text: "what is the fox"}},
	})

	return func() { SetServices(prev) }
}
