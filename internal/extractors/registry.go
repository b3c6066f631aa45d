package extractors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches files to extractors based on MIME type.
// When several extractors claim the same MIME type the one with the
// highest Priority wins.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Extractor),
	}
}

// Register adds an extractor for all MIME types it supports.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mime := range e.SupportedMIMETypes() {
		list := append(r.byMIME[mime], e)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mime] = list
	}
}

// ForMIMEType returns the highest-priority extractor for the MIME type.
func (r *Registry) ForMIMEType(mimeType string) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byMIME[mimeType]
	if len(list) == 0 {
		return nil, fmt.Errorf("no extractor for %q: %w", mimeType, domain.ErrUnsupportedType)
	}
	return list[0], nil
}

// SupportedMIMETypes returns all MIME types that can be extracted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}
