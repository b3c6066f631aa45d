package driving

import (
	"context"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// QueryOptions configures retrieval and the fallback gate.
type QueryOptions struct {
	// TopK is the maximum number of chunks to retrieve. Zero selects
	// the configured default.
	TopK int

	// Threshold overrides the similarity threshold when positive.
	Threshold float64

	// MinResults overrides the minimum result count when positive.
	MinResults int

	// Strict makes a missing collection an error instead of the
	// empty "no evidence" state.
	Strict bool
}

// QueryService answers natural-language questions against a collection.
type QueryService interface {
	// Retrieve runs similarity search and returns the ranked results
	// with their confidence signal. No generation is involved.
	Retrieve(ctx context.Context, collection, query string, opts QueryOptions) (*domain.Retrieval, error)

	// Ask retrieves, applies the fallback decision, composes an
	// answer, and returns the full response surface.
	Ask(ctx context.Context, collection, question string, opts QueryOptions) (*domain.QueryResponse, error)
}
