package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is the default number of chunks retrieved per query.
const DefaultTopK = 5

// QueryService answers questions against a collection by retrieving
// the most similar chunks and gating between grounded and fallback
// generation.
type QueryService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.LLMService

	policy domain.FallbackPolicy

	// confidenceTopN is how many top results feed the confidence
	// signal. 1 means the maximum similarity alone.
	confidenceTopN int

	defaultTopK int
}

// NewQueryService creates a new query service. The llm parameter is
// optional (can be nil); Retrieve works without it, Ask does not.
func NewQueryService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
) *QueryService {
	return &QueryService{
		embedder:       embedder,
		store:          store,
		llm:            llm,
		policy:         domain.DefaultFallbackPolicy(),
		confidenceTopN: 1,
		defaultTopK:    DefaultTopK,
	}
}

// SetDefaultTopK overrides the default retrieval depth applied when
// QueryOptions leaves TopK zero.
func (s *QueryService) SetDefaultTopK(k int) {
	if k > 0 {
		s.defaultTopK = k
	}
}

// SetFallbackPolicy overrides the default fallback gate.
func (s *QueryService) SetFallbackPolicy(p domain.FallbackPolicy) {
	s.policy = p
}

// SetConfidenceTopN sets how many top results are averaged into the
// confidence signal.
func (s *QueryService) SetConfidenceTopN(n int) {
	if n > 0 {
		s.confidenceTopN = n
	}
}

// Retrieve runs similarity search and computes the confidence signal.
// An empty or absent collection yields an empty retrieval with
// confidence 0.0 - the "no evidence" state, not an error.
func (s *QueryService) Retrieve(
	ctx context.Context, collection, query string, opts driving.QueryOptions,
) (*domain.Retrieval, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	logger.Section("Retrieval")
	logger.Debug("Query %q against collection %q (top_k=%d)", query, collection, topK)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}

	results, err := s.store.Search(ctx, collection, embedding, topK, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("search collection %q: %w", collection, err)
	}

	retrieval := &domain.Retrieval{
		Results:    results,
		Confidence: s.confidence(results),
	}
	logger.Debug("Retrieved %d results, confidence %.3f", len(results), retrieval.Confidence)
	return retrieval, nil
}

// Ask retrieves, decides, and composes an answer. The response always
// carries a provenance tag; generation failure surfaces as an error,
// never as a fabricated answer.
func (s *QueryService) Ask(
	ctx context.Context, collection, question string, opts driving.QueryOptions,
) (*domain.QueryResponse, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	retrieval, err := s.Retrieve(ctx, collection, question, opts)
	if err != nil {
		return nil, err
	}

	policy := s.policy
	if opts.Threshold > 0 {
		policy.Threshold = opts.Threshold
	}
	if opts.MinResults > 0 {
		policy.MinResults = opts.MinResults
	}

	source := policy.Decide(*retrieval)
	logger.Info("Fallback decision: %s (confidence=%.3f threshold=%.3f results=%d)",
		source, retrieval.Confidence, policy.Threshold, len(retrieval.Results))

	answer, err := s.compose(ctx, question, source, retrieval.Results)
	if err != nil {
		return nil, err
	}

	return &domain.QueryResponse{
		Query:        question,
		Answer:       answer,
		Collection:   collection,
		Results:      retrieval.Results,
		TotalResults: len(retrieval.Results),
		AnswerSource: source,
		FoundInDocs:  source == domain.AnswerFromDocuments,
		Success:      true,
	}, nil
}

// compose invokes the generation provider under the prompt contract
// for the decided source.
func (s *QueryService) compose(
	ctx context.Context, question string, source domain.AnswerSource, results []domain.QueryResult,
) (string, error) {
	var messages []driven.ChatMessage
	var opts driven.ChatOptions

	switch source {
	case domain.AnswerFromDocuments:
		messages = []driven.ChatMessage{
			{Role: "system", Content: groundedSystemPrompt},
			{Role: "user", Content: groundedUserPrompt(question, results)},
		}
		opts = driven.ChatOptions{Temperature: 0.2, MaxTokens: 500}
	default:
		messages = []driven.ChatMessage{
			{Role: "system", Content: fallbackSystemPrompt},
			{Role: "user", Content: question},
		}
		opts = driven.ChatOptions{Temperature: 0.7, MaxTokens: 500}
	}

	text, err := s.llm.Chat(ctx, messages, opts)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: provider returned empty text", domain.ErrGenerationFailed)
	}
	return text, nil
}

// confidence aggregates the top-ranked similarity scores. Results are
// already ordered by descending similarity.
func (s *QueryService) confidence(results []domain.QueryResult) float64 {
	if len(results) == 0 {
		return 0.0
	}

	n := s.confidenceTopN
	if n <= 1 {
		return results[0].SimilarityScore
	}
	if n > len(results) {
		n = len(results)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += results[i].SimilarityScore
	}
	return sum / float64(n)
}
