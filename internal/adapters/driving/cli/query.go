package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

var (
	queryCollection string
	queryTopK       int
	queryStrict     bool
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve similar chunks without generating an answer",
	Long: `Runs similarity retrieval against a collection and prints the ranked
chunks with their scores. No answer is generated; this is the raw
retrieval surface, useful for tuning thresholds and inspecting what the
ask command would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryCollection, "collection", "c", "default",
		"collection to query")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0,
		"number of chunks to retrieve (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryStrict, "strict", false,
		"treat a missing collection as an error")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	opts := driving.QueryOptions{
		TopK:   queryTopK,
		Strict: queryStrict,
	}

	retrieval, err := queryService.Retrieve(cmd.Context(), queryCollection, args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(retrieval.Results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printRetrieval(cmd, retrieval)
	return nil
}

func printRetrieval(cmd *cobra.Command, retrieval *domain.Retrieval) {
	if retrieval.Empty() {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Confidence: %.2f\n\n", retrieval.Confidence)
	for i, result := range retrieval.Results {
		filename, _ := result.Metadata["filename"].(string)
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, filename, result.SimilarityScore)
		cmd.Printf("      %s\n\n", truncate(result.Chunk, 200))
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
