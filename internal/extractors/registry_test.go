package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// fakeExtractor is a configurable extractor for registry tests.
type fakeExtractor struct {
	mimeTypes []string
	priority  int
	text      string
}

func (f *fakeExtractor) SupportedMIMETypes() []string { return f.mimeTypes }
func (f *fakeExtractor) Priority() int                { return f.priority }
func (f *fakeExtractor) Extract(_ context.Context, _ *domain.RawFile) (string, error) {
	return f.text, nil
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NotNil(t, registry)
	assert.Empty(t, registry.SupportedMIMETypes())
}

func TestRegistry_ForMIMEType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"text/plain"},
		priority:  5,
		text:      "plain",
	})

	extractor, err := registry.ForMIMEType("text/plain")
	require.NoError(t, err)
	require.NotNil(t, extractor)

	text, err := extractor.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}

func TestRegistry_ForMIMEType_Unsupported(t *testing.T) {
	registry := NewRegistry()

	extractor, err := registry.ForMIMEType("application/x-unknown")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Nil(t, extractor)
}

func TestRegistry_HighestPriorityWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"application/pdf"},
		priority:  5,
		text:      "fallback",
	})
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"application/pdf"},
		priority:  70,
		text:      "specialised",
	})

	extractor, err := registry.ForMIMEType("application/pdf")
	require.NoError(t, err)

	text, err := extractor.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "specialised", text)
}

func TestRegistry_RegistrationOrderIrrelevant(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"image/png"},
		priority:  70,
		text:      "specialised",
	})
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"image/png"},
		priority:  5,
		text:      "fallback",
	})

	extractor, err := registry.ForMIMEType("image/png")
	require.NoError(t, err)

	text, err := extractor.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "specialised", text)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"text/plain", "text/markdown"},
		priority:  5,
	})
	registry.Register(&fakeExtractor{
		mimeTypes: []string{"application/pdf"},
		priority:  70,
	})

	types := registry.SupportedMIMETypes()
	assert.Equal(t, []string{"application/pdf", "text/markdown", "text/plain"}, types)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.ExtractorRegistry = (*Registry)(nil)
}
