package services

import (
	"fmt"
	"strings"

	"github.com/dochaven/docq-cli/internal/core/domain"
)

// groundedSystemPrompt pins the generator to the supplied context.
// The composer must never attribute general knowledge to the corpus.
const groundedSystemPrompt = `You are a helpful assistant. Answer the user's question based ONLY on the provided context. Be concise and direct. If the answer is not clearly found in the context, say "I cannot find this information in the provided documents."`

// fallbackSystemPrompt is used when retrieval confidence is
// insufficient and the answer comes from general knowledge.
const fallbackSystemPrompt = `You are a helpful assistant. Answer the user's question to the best of your knowledge. Be concise and informative.`

// groundedUserPrompt renders the retrieved chunk texts and the question
// into the grounded generation request.
func groundedUserPrompt(question string, results []domain.QueryResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk)
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(parts, "\n\n"), question)
}
