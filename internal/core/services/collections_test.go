package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dochaven/docq-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

func TestCollectionService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	t.Cleanup(func() { _ = store.Close() })

	ingest := NewIngestionService(nil, &fakeEmbedder{}, store)
	svc := NewCollectionService(store)

	first, err := ingest.IngestText(ctx, "animals", "fox.txt",
		"The quick brown fox jumps over the lazy dog.", driving.IngestOptions{})
	require.NoError(t, err)
	_, err = ingest.IngestText(ctx, "animals", "owl.txt",
		"Owls hunt at night.", driving.IngestOptions{})
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		summaries, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "animals", summaries[0].Name)
		assert.Len(t, summaries[0].Documents, 2)
	})

	t.Run("info", func(t *testing.T) {
		info, err := svc.Info(ctx, "animals")
		require.NoError(t, err)
		assert.Equal(t, "animals", info.Name)
		assert.Equal(t, 2, info.DocumentCount)
		assert.GreaterOrEqual(t, info.ChunkCount, 2)
	})

	t.Run("info missing collection", func(t *testing.T) {
		_, err := svc.Info(ctx, "plants")
		assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
	})

	t.Run("info empty name", func(t *testing.T) {
		_, err := svc.Info(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("delete document", func(t *testing.T) {
		require.NoError(t, svc.DeleteDocument(ctx, "animals", first.DocumentID))

		info, err := svc.Info(ctx, "animals")
		require.NoError(t, err)
		assert.Equal(t, 1, info.DocumentCount)
	})

	t.Run("delete validation", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteDocument(ctx, "", "doc-1"), domain.ErrInvalidInput)
		assert.ErrorIs(t, svc.DeleteDocument(ctx, "animals", " "), domain.ErrInvalidInput)
	})
}
