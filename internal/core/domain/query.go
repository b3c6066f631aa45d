package domain

// QueryResult represents a single retrieved chunk with its similarity
// score. Results are ephemeral; they are produced per query and never
// persisted.
type QueryResult struct {
	// Chunk is the retrieved chunk text.
	Chunk string

	// Metadata is the chunk metadata (filename, chunk index).
	Metadata map[string]any

	// SimilarityScore is the cosine similarity mapped into [0,1].
	SimilarityScore float64
}

// Retrieval is a ranked result set together with its aggregate
// confidence signal. An empty or absent collection yields an empty
// Retrieval with confidence 0.0, the "no evidence" state, not an
// error.
type Retrieval struct {
	// Results are ordered by descending similarity, ties broken by
	// chunk ordinal.
	Results []QueryResult

	// Confidence is the maximum similarity observed, or the mean of
	// the top N when configured.
	Confidence float64
}

// Empty reports whether the retrieval produced no evidence.
func (r Retrieval) Empty() bool {
	return len(r.Results) == 0
}

// AnswerSource tags an answer with its provenance.
type AnswerSource string

const (
	// AnswerFromDocuments means the answer was grounded in retrieved
	// chunks.
	AnswerFromDocuments AnswerSource = "document"

	// AnswerFromFallback means retrieval confidence was insufficient
	// and the answer came from the general-knowledge generator.
	AnswerFromFallback AnswerSource = "gpt"
)

// Answer is a composed answer with its supporting evidence.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Source indicates whether the answer was grounded in documents
	// or fell back to general knowledge.
	Source AnswerSource

	// Supporting holds the ordered retrieval results the decision was
	// made on.
	Supporting []QueryResult
}

// QueryResponse is the stable response surface exposed to callers of
// the query flow.
type QueryResponse struct {
	Query        string        `json:"query"`
	Answer       string        `json:"answer"`
	Collection   string        `json:"collection_name"`
	Results      []QueryResult `json:"results"`
	TotalResults int           `json:"total_results"`
	AnswerSource AnswerSource  `json:"answer_source"`
	FoundInDocs  bool          `json:"found_in_docs"`
	Success      bool          `json:"success"`
}
