// docq is a CLI for asking questions about your documents. Files are
// ingested into named collections; questions are answered from the
// most similar chunks, with a general-knowledge fallback when the
// documents hold no good evidence.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dochaven/docq-cli/internal/adapters/driven/ai"
	configfile "github.com/dochaven/docq-cli/internal/adapters/driven/config/file"
	"github.com/dochaven/docq-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/dochaven/docq-cli/internal/adapters/driving/cli"
	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/services"
	"github.com/dochaven/docq-cli/internal/extractors"
	"github.com/dochaven/docq-cli/internal/extractors/docx"
	"github.com/dochaven/docq-cli/internal/extractors/plaintext"
	"github.com/dochaven/docq-cli/internal/extractors/remote"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for API keys during development.
	_ = godotenv.Load()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings := cli.LoadSettings(configStore)

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	// AI services are optional at startup. Validation pings the
	// provider; on failure the service stays nil and commands that
	// need it report a configuration error.
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}

	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if llm != nil {
		defer llm.Close()
	}

	registry := buildExtractors(settings.Extraction)

	ingestSvc := services.NewIngestionService(registry, embedder, store)
	ingestSvc.SetChunkDefaults(settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)

	querySvc := services.NewQueryService(embedder, store, llm)
	querySvc.SetDefaultTopK(settings.Query.TopK)
	querySvc.SetFallbackPolicy(domain.FallbackPolicy{
		Threshold:  settings.Query.Threshold,
		MinResults: settings.Query.MinResults,
	})

	cli.SetServices(cli.Services{
		Ingest:      ingestSvc,
		Query:       querySvc,
		Collections: services.NewCollectionService(store),
		Config:      configStore,
		Extractors:  registry,
	})

	return cli.Execute()
}

// buildExtractors assembles the extractor registry. The remote
// extraction sidecar (PDF, OCR, audio) joins only when configured.
func buildExtractors(extraction domain.ExtractionSettings) *extractors.Registry {
	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(docx.New())

	if extraction.IsConfigured() {
		registry.Register(remote.New(remote.Config{
			BaseURL: extraction.BaseURL,
			APIKey:  extraction.APIKey,
		}))
	}
	return registry
}
