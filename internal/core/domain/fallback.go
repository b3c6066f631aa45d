package domain

// Default fallback policy values. Empirically chosen; treat as
// configuration, not constants of nature.
const (
	DefaultSimilarityThreshold = 0.75
	DefaultMinResults          = 1
)

// FallbackPolicy gates the decision between answering from retrieved
// documents and deferring to the general-knowledge generator.
type FallbackPolicy struct {
	// Threshold is the minimum confidence required to answer from
	// documents.
	Threshold float64

	// MinResults is the minimum number of retrieved chunks required
	// to answer from documents.
	MinResults int
}

// DefaultFallbackPolicy returns the default gating policy.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{
		Threshold:  DefaultSimilarityThreshold,
		MinResults: DefaultMinResults,
	}
}

// Decide returns the terminal outcome for a query given its retrieval.
// The decision is deterministic and pure: documents win only when the
// result set is non-empty, confidence meets the threshold, and the
// result count meets the minimum. Everything else falls back, so the
// system always produces an answer tagged with its provenance.
func (p FallbackPolicy) Decide(r Retrieval) AnswerSource {
	minResults := p.MinResults
	if minResults < 1 {
		minResults = 1
	}

	if r.Empty() {
		return AnswerFromFallback
	}
	if r.Confidence < p.Threshold {
		return AnswerFromFallback
	}
	if len(r.Results) < minResults {
		return AnswerFromFallback
	}
	return AnswerFromDocuments
}
