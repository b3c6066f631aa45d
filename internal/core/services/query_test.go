package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

// scriptedLLM returns a canned answer and records the last call so
// tests can assert the prompt contract.
type scriptedLLM struct {
	answer string
	err    error

	lastMessages []driven.ChatMessage
	lastOpts     driven.ChatOptions
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.answer, s.err
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.lastMessages = messages
	s.lastOpts = opts
	return s.answer, s.err
}

func (s *scriptedLLM) ModelName() string              { return "scripted-llm" }
func (s *scriptedLLM) Ping(ctx context.Context) error { return nil }
func (s *scriptedLLM) Close() error                   { return nil }

func foxResults() []domain.QueryResult {
	return []domain.QueryResult{
		{
			Chunk:           "The quick brown fox jumps over the lazy dog.",
			Metadata:        map[string]any{"filename": "fox.txt", "chunk_index": 0},
			SimilarityScore: 0.91,
		},
		{
			Chunk:           "Foxes are omnivorous mammals.",
			Metadata:        map[string]any{"filename": "fox.txt", "chunk_index": 1},
			SimilarityScore: 0.83,
		},
	}
}

func TestRetrieve(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{}, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "   ", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("nil embedder", func(t *testing.T) {
		svc := NewQueryService(nil, &recordingStore{}, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("embedding failure", func(t *testing.T) {
		svc := NewQueryService(&fakeEmbedder{err: errors.New("provider down")}, &recordingStore{}, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	})

	t.Run("empty collection is not an error", func(t *testing.T) {
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{}, nil)
		retrieval, err := svc.Retrieve(context.Background(), "missing", "question", driving.QueryOptions{})
		require.NoError(t, err)
		assert.True(t, retrieval.Empty())
		assert.Equal(t, 0.0, retrieval.Confidence)
	})

	t.Run("confidence is top score", func(t *testing.T) {
		store := &recordingStore{results: foxResults()}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		retrieval, err := svc.Retrieve(context.Background(), "docs", "what is the fox", driving.QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, retrieval.Results, 2)
		assert.InDelta(t, 0.91, retrieval.Confidence, 1e-9)
	})

	t.Run("confidence top-n averaging", func(t *testing.T) {
		store := &recordingStore{results: foxResults()}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		svc.SetConfidenceTopN(2)
		retrieval, err := svc.Retrieve(context.Background(), "docs", "what is the fox", driving.QueryOptions{})
		require.NoError(t, err)
		assert.InDelta(t, (0.91+0.83)/2, retrieval.Confidence, 1e-9)
	})

	t.Run("top-n capped at result count", func(t *testing.T) {
		store := &recordingStore{results: foxResults()[:1]}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		svc.SetConfidenceTopN(10)
		retrieval, err := svc.Retrieve(context.Background(), "docs", "what is the fox", driving.QueryOptions{})
		require.NoError(t, err)
		assert.InDelta(t, 0.91, retrieval.Confidence, 1e-9)
	})

	t.Run("default top k", func(t *testing.T) {
		store := &recordingStore{}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, DefaultTopK, store.lastTopK)
	})

	t.Run("configured default top k", func(t *testing.T) {
		store := &recordingStore{}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		svc.SetDefaultTopK(7)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, 7, store.lastTopK)
	})

	t.Run("explicit top k wins", func(t *testing.T) {
		store := &recordingStore{}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{TopK: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, store.lastTopK)
	})

	t.Run("strict flag reaches store", func(t *testing.T) {
		store := &recordingStore{}
		svc := NewQueryService(&fakeEmbedder{}, store, nil)
		_, err := svc.Retrieve(context.Background(), "docs", "question", driving.QueryOptions{Strict: true})
		require.NoError(t, err)
		assert.True(t, store.lastStrict)
	})
}

func TestAsk_GroundedAnswer(t *testing.T) {
	store := &recordingStore{results: foxResults()}
	llm := &scriptedLLM{answer: "The fox is quick and brown."}
	svc := NewQueryService(&fakeEmbedder{}, store, llm)

	response, err := svc.Ask(context.Background(), "docs", "what is the fox", driving.QueryOptions{})

	require.NoError(t, err)
	assert.Equal(t, "The fox is quick and brown.", response.Answer)
	assert.Equal(t, domain.AnswerFromDocuments, response.AnswerSource)
	assert.True(t, response.FoundInDocs)
	assert.True(t, response.Success)
	assert.Equal(t, "docs", response.Collection)
	assert.Equal(t, 2, response.TotalResults)

	require.Len(t, llm.lastMessages, 2)
	assert.Equal(t, "system", llm.lastMessages[0].Role)
	assert.Contains(t, llm.lastMessages[0].Content, "based ONLY on the provided context")
	assert.Equal(t, "user", llm.lastMessages[1].Role)
	assert.Contains(t, llm.lastMessages[1].Content, "The quick brown fox jumps over the lazy dog.")
	assert.Contains(t, llm.lastMessages[1].Content, "Foxes are omnivorous mammals.")
	assert.Contains(t, llm.lastMessages[1].Content, "Question: what is the fox")

	assert.InDelta(t, 0.2, llm.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 500, llm.lastOpts.MaxTokens)
}

func TestAsk_FallbackAnswer(t *testing.T) {
	t.Run("low confidence", func(t *testing.T) {
		results := foxResults()
		results[0].SimilarityScore = 0.41
		results[1].SimilarityScore = 0.33
		store := &recordingStore{results: results}
		llm := &scriptedLLM{answer: "Quantum entanglement links particle states."}
		svc := NewQueryService(&fakeEmbedder{}, store, llm)

		response, err := svc.Ask(context.Background(), "docs", "what is quantum entanglement", driving.QueryOptions{})

		require.NoError(t, err)
		assert.Equal(t, domain.AnswerFromFallback, response.AnswerSource)
		assert.False(t, response.FoundInDocs)
		assert.True(t, response.Success)
		// Low-scoring results stay visible alongside the fallback answer.
		assert.Equal(t, 2, response.TotalResults)

		require.Len(t, llm.lastMessages, 2)
		assert.NotContains(t, llm.lastMessages[0].Content, "provided context")
		assert.Equal(t, "what is quantum entanglement", llm.lastMessages[1].Content)
		assert.InDelta(t, 0.7, llm.lastOpts.Temperature, 1e-9)
		assert.Equal(t, 500, llm.lastOpts.MaxTokens)
	})

	t.Run("empty retrieval", func(t *testing.T) {
		llm := &scriptedLLM{answer: "General knowledge answer."}
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{}, llm)

		response, err := svc.Ask(context.Background(), "empty", "anything", driving.QueryOptions{})

		require.NoError(t, err)
		assert.Equal(t, domain.AnswerFromFallback, response.AnswerSource)
		assert.Zero(t, response.TotalResults)
	})
}

func TestAsk_PolicyOverrides(t *testing.T) {
	t.Run("raised threshold forces fallback", func(t *testing.T) {
		store := &recordingStore{results: foxResults()}
		llm := &scriptedLLM{answer: "answer"}
		svc := NewQueryService(&fakeEmbedder{}, store, llm)

		response, err := svc.Ask(context.Background(), "docs", "what is the fox",
			driving.QueryOptions{Threshold: 0.95})

		require.NoError(t, err)
		assert.Equal(t, domain.AnswerFromFallback, response.AnswerSource)
	})

	t.Run("lowered threshold grounds a weak match", func(t *testing.T) {
		results := foxResults()[:1]
		results[0].SimilarityScore = 0.55
		store := &recordingStore{results: results}
		llm := &scriptedLLM{answer: "answer"}
		svc := NewQueryService(&fakeEmbedder{}, store, llm)

		response, err := svc.Ask(context.Background(), "docs", "what is the fox",
			driving.QueryOptions{Threshold: 0.5})

		require.NoError(t, err)
		assert.Equal(t, domain.AnswerFromDocuments, response.AnswerSource)
	})

	t.Run("min results requirement", func(t *testing.T) {
		store := &recordingStore{results: foxResults()}
		llm := &scriptedLLM{answer: "answer"}
		svc := NewQueryService(&fakeEmbedder{}, store, llm)

		response, err := svc.Ask(context.Background(), "docs", "what is the fox",
			driving.QueryOptions{MinResults: 3})

		require.NoError(t, err)
		assert.Equal(t, domain.AnswerFromFallback, response.AnswerSource)
	})
}

func TestAsk_Failures(t *testing.T) {
	t.Run("nil llm", func(t *testing.T) {
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{}, nil)
		_, err := svc.Ask(context.Background(), "docs", "question", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("generation error", func(t *testing.T) {
		llm := &scriptedLLM{err: errors.New("rate limited")}
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{results: foxResults()}, llm)
		_, err := svc.Ask(context.Background(), "docs", "question", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	})

	t.Run("empty generation", func(t *testing.T) {
		llm := &scriptedLLM{answer: "  \n "}
		svc := NewQueryService(&fakeEmbedder{}, &recordingStore{results: foxResults()}, llm)
		_, err := svc.Ask(context.Background(), "docs", "question", driving.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	})

	t.Run("search error", func(t *testing.T) {
		store := &recordingStore{searchErr: errors.New("db locked")}
		llm := &scriptedLLM{answer: "answer"}
		svc := NewQueryService(&fakeEmbedder{}, store, llm)
		_, err := svc.Ask(context.Background(), "docs", "question", driving.QueryOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

func TestGroundedUserPrompt(t *testing.T) {
	prompt := groundedUserPrompt("what is the fox", foxResults())

	assert.True(t, strings.HasPrefix(prompt, "Context:\n"))
	assert.Contains(t, prompt, "The quick brown fox jumps over the lazy dog.")
	assert.Contains(t, prompt, "Foxes are omnivorous mammals.")
	assert.True(t, strings.HasSuffix(prompt, "Question: what is the fox"))
}
