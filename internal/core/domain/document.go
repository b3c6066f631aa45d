package domain

import "time"

// Document represents a single ingested file within a collection.
// A document is immutable once stored and is deleted only as a whole
// unit, cascading to all of its chunks.
type Document struct {
	// ID is derived deterministically from filename and content, so
	// re-ingesting identical material updates rather than duplicates.
	ID string

	// Filename is the original file name as supplied at ingestion.
	Filename string

	// Collection is the named namespace holding this document.
	Collection string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk is a bounded text segment derived from a document. It is the
// unit of embedding and retrieval. Chunks are created during ingestion
// and never mutated.
type Chunk struct {
	// ID is unique within a collection. IDs may collide across
	// collections.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Text is the chunk content. Overlap-derived duplication of text
	// across adjacent chunks is expected.
	Text string

	// Index is the zero-based ordinal position within the document.
	// Indices are contiguous per document.
	Index int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata carries the filename and chunk index for display.
	Metadata map[string]any
}

// DocumentRef is a deduplicated {document, filename} pair derived from
// a collection's chunks, used by the collection listing surface.
type DocumentRef struct {
	DocumentID string
	Filename   string
}

// CollectionSummary describes one collection and its documents.
type CollectionSummary struct {
	Name      string
	Documents []DocumentRef
}

// CollectionInfo holds per-collection statistics.
type CollectionInfo struct {
	Name          string
	ChunkCount    int
	DocumentCount int
}

// IngestReceipt reports the outcome of a successful ingestion.
type IngestReceipt struct {
	Filename    string
	Collection  string
	DocumentID  string
	TotalChunks int
}
