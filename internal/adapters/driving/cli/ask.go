package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/extractors"
)

var (
	askCollection string
	askTopK       int
	askThreshold  float64
	askMinResults int
	askAudio      string
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a collection",
	Long: `Asks a natural-language question against a collection.

The question is embedded, similar chunks are retrieved, and an answer
is composed. When retrieval confidence is below the threshold the
answer comes from the model's general knowledge instead and is marked
accordingly.

With --audio the question is transcribed from an audio file by the
extraction service instead of being given as an argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCollection, "collection", "c", "default",
		"collection to query")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0,
		"number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", 0,
		"similarity threshold for document-grounded answers (0 = configured default)")
	askCmd.Flags().IntVar(&askMinResults, "min-results", 0,
		"minimum results required for a document-grounded answer (0 = configured default)")
	askCmd.Flags().StringVar(&askAudio, "audio", "",
		"transcribe the question from an audio file")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question, err := resolveQuestion(cmd, args)
	if err != nil {
		return err
	}

	opts := driving.QueryOptions{
		TopK:       askTopK,
		Threshold:  askThreshold,
		MinResults: askMinResults,
	}

	response, err := queryService.Ask(cmd.Context(), askCollection, question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printResponse(cmd, response)
	return nil
}

// resolveQuestion returns the question text, transcribing the audio
// file when --audio is set.
func resolveQuestion(cmd *cobra.Command, args []string) (string, error) {
	if askAudio == "" {
		if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
			return "", errors.New("provide a question or --audio FILE")
		}
		return args[0], nil
	}
	if len(args) > 0 {
		return "", errors.New("provide either a question or --audio, not both")
	}
	if extractorRegistry == nil {
		return "", errors.New("extractor registry not configured")
	}

	content, err := os.ReadFile(askAudio)
	if err != nil {
		return "", fmt.Errorf("cannot read audio file: %w", err)
	}

	mimeType := extractors.DetectMIMEType(askAudio)
	extractor, err := extractorRegistry.ForMIMEType(mimeType)
	if err != nil {
		return "", fmt.Errorf("cannot transcribe %q: %w", askAudio, err)
	}

	question, err := extractor.Extract(cmd.Context(), &domain.RawFile{
		Name:     filepath.Base(askAudio),
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	if strings.TrimSpace(question) == "" {
		return "", errors.New("transcription produced no text")
	}

	cmd.Printf("Question: %s\n\n", strings.TrimSpace(question))
	return question, nil
}

func printResponse(cmd *cobra.Command, response *domain.QueryResponse) {
	if response.FoundInDocs {
		cmd.Println("[from documents]")
	} else {
		cmd.Println("[general knowledge]")
	}
	cmd.Println()
	cmd.Println(response.Answer)

	if len(response.Results) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, result := range response.Results {
		filename, _ := result.Metadata["filename"].(string)
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, filename, result.SimilarityScore)
	}
}
