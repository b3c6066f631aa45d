package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors; adapters wrap their
// internal failures with one of these sentinels so that callers never
// see raw collaborator detail beyond a generic category.
var (
	// ErrInvalidChunkConfig indicates a bad chunk size/overlap combination.
	// Rejected before any I/O happens.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrInvalidInput indicates malformed or invalid input at a boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed indicates text extraction could not produce text.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingProvider indicates an embedding call failed or returned
	// vectors of the wrong dimensionality.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrCollectionNotFound indicates the referenced collection is absent.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDocumentNotFound indicates the referenced document is absent.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrGenerationFailed indicates the generation provider errored or
	// returned an empty answer. Never masked with a default string.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrUnsupportedType indicates an unknown extractor or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
