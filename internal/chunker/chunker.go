// Package chunker provides a fixed-size overlapping text chunker.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Chunker splits extracted text into overlapping fixed-size segments.
// Splitting is rune based so multi-byte text never tears mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options. Validation happens in
// Split so the error can name the offending values.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split produces the ordered chunk sequence for a document. Every chunk
// except possibly the last has exactly chunkSize runes, and consecutive
// chunks overlap by exactly the configured overlap, so dropping the
// overlapping prefix of each chunk after the first reconstructs the
// original text.
//
// Empty text yields an empty sequence. Text shorter than the chunk size
// yields a single chunk holding the whole text.
func (c *Chunker) Split(documentID, filename, text string) ([]domain.Chunk, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, len(runes)/step+1)
	index := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(documentID, index),
			DocumentID: documentID,
			Text:       string(runes[start:end]),
			Index:      index,
			Metadata: map[string]any{
				"filename":    filename,
				"chunk_index": index,
			},
		})
		index++

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// validate rejects bad configurations before any I/O.
func (c *Chunker) validate() error {
	if c.chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive",
			domain.ErrInvalidChunkConfig, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return fmt.Errorf("%w: overlap %d must be >= 0 and < chunk size %d",
			domain.ErrInvalidChunkConfig, c.overlap, c.chunkSize)
	}
	return nil
}

// chunkNamespace scopes deterministic chunk IDs. Chunk IDs must be
// stable across re-ingestion so idempotent inserts replace rather than
// duplicate.
var chunkNamespace = uuid.MustParse("8f1aa0de-13c7-46c9-9fd4-2ab54e6ddfb1")

// ChunkID derives the stable chunk identifier for a document ordinal.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, fmt.Appendf(nil, "%s:%d", documentID, index)).String()
}
