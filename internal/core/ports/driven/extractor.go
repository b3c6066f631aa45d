package driven

import (
	"context"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// Extractor turns raw file bytes into plain text. Each extractor
// handles specific MIME types (plain text, DOCX, PDF, images, audio).
// Extraction is a thin adapter; the core only consumes the text.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract produces the plain text of the file. Failures are
	// wrapped with domain.ErrExtractionFailed and propagate unchanged
	// to the caller.
	Extract(ctx context.Context, raw *domain.RawFile) (string, error)
}

// ExtractorRegistry selects the appropriate extractor for a file.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(e Extractor)

	// ForMIMEType returns the highest-priority extractor for the MIME
	// type, or domain.ErrUnsupportedType when none handles it.
	ForMIMEType(mimeType string) (Extractor, error)
}
