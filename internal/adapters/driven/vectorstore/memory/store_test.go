package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

func insertDoc(t *testing.T, store *Store, col, docID, filename string, embeddings ...[]float32) {
	t.Helper()

	doc := domain.Document{ID: docID, Filename: filename}
	chunks := make([]domain.Chunk, len(embeddings))
	for i, emb := range embeddings {
		chunks[i] = domain.Chunk{
			ID:         docID + ":" + string(rune('a'+i)),
			DocumentID: docID,
			Text:       filename + " chunk " + string(rune('a'+i)),
			Index:      i,
			Embedding:  emb,
			Metadata:   map[string]any{"filename": filename, "chunk_index": i},
		}
	}
	require.NoError(t, store.Insert(context.Background(), col, doc, chunks))
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	store := NewStore()
	insertDoc(t, store, "default", "doc-1", "notes.txt",
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
	)

	results, err := store.Search(context.Background(), "default", []float32{1, 0, 0}, 5, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-6)
	assert.Equal(t, "notes.txt chunk a", results[0].Chunk)
	assert.InDelta(t, 0.5, results[1].SimilarityScore, 1e-6)
}

func TestSearch_MissingCollection(t *testing.T) {
	store := NewStore()

	results, err := store.Search(context.Background(), "absent", []float32{1}, 5, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = store.Search(context.Background(), "absent", []float32{1}, 5, true)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestInsert_ReplacesPriorChunks(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	insertDoc(t, store, "default", "doc-1", "notes.txt",
		[]float32{1, 0}, []float32{0, 1}, []float32{1, 1})
	insertDoc(t, store, "default", "doc-1", "notes.txt", []float32{1, 0})

	info, err := store.CollectionInfo(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, info.ChunkCount)
	assert.Equal(t, 1, info.DocumentCount)
}

func TestInsert_ReplacesChangedFile(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	insertDoc(t, store, "default", "doc-v1", "notes.txt",
		[]float32{1, 0}, []float32{0, 1})
	insertDoc(t, store, "default", "doc-v2", "notes.txt", []float32{1, 0})

	info, err := store.CollectionInfo(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, info.DocumentCount)
	assert.Equal(t, 1, info.ChunkCount)

	results, err := store.Search(ctx, "default", []float32{1, 0}, 10, false)
	require.NoError(t, err)
	require.Len(t, results, 1)

	summaries, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Documents, 1)
	assert.Equal(t, "doc-v2", summaries[0].Documents[0].DocumentID)
}

func TestDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	insertDoc(t, store, "default", "doc-1", "notes.txt", []float32{1, 0})

	require.NoError(t, store.Delete(ctx, "default", "doc-1"))

	results, err := store.Search(ctx, "default", []float32{1, 0}, 5, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	err = store.Delete(ctx, "default", "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	// Missing collection is a no-op.
	assert.NoError(t, store.Delete(ctx, "absent", "doc-1"))
}

func TestListCollections(t *testing.T) {
	store := NewStore()

	insertDoc(t, store, "beta", "doc-2", "b.txt", []float32{0, 1})
	insertDoc(t, store, "alpha", "doc-1", "a.txt", []float32{1, 0})

	summaries, err := store.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "alpha", summaries[0].Name)
	assert.Equal(t, "beta", summaries[1].Name)
	require.Len(t, summaries[0].Documents, 1)
	assert.Equal(t, "a.txt", summaries[0].Documents[0].Filename)
}

func TestCollectionInfo_Missing(t *testing.T) {
	store := NewStore()

	_, err := store.CollectionInfo(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.VectorStore = (*Store)(nil)
}
