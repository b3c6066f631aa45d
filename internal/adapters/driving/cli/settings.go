package cli

import (
	"os"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driven"
)

// Configuration keys as stored in config.toml.
const (
	keyEmbeddingProvider = "embedding.provider"
	keyEmbeddingModel    = "embedding.model"
	keyEmbeddingBaseURL  = "embedding.base_url"
	keyEmbeddingAPIKey   = "embedding.api_key"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyExtractionBaseURL = "extraction.base_url"
	keyExtractionAPIKey  = "extraction.api_key"

	keyQueryTopK       = "query.top_k"
	keyQueryThreshold  = "query.threshold"
	keyQueryMinResults = "query.min_results"

	keyIngestChunkSize    = "ingest.chunk_size"
	keyIngestChunkOverlap = "ingest.chunk_overlap"
)

// LoadSettings builds application settings from the config store,
// starting from defaults. API keys fall back to the conventional
// environment variables when not stored.
func LoadSettings(store driven.ConfigStore) domain.AppSettings {
	settings := domain.DefaultAppSettings()
	if store == nil {
		return settings
	}

	if v := store.GetString(keyEmbeddingProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v := store.GetString(keyEmbeddingModel); v != "" {
		settings.Embedding.Model = v
	}
	if v := store.GetString(keyEmbeddingBaseURL); v != "" {
		settings.Embedding.BaseURL = v
	}
	settings.Embedding.APIKey = firstNonEmpty(
		store.GetString(keyEmbeddingAPIKey),
		os.Getenv("OPENAI_API_KEY"),
	)

	if v := store.GetString(keyLLMProvider); v != "" {
		settings.LLM.Provider = domain.AIProvider(v)
	}
	if v := store.GetString(keyLLMModel); v != "" {
		settings.LLM.Model = v
	}
	if v := store.GetString(keyLLMBaseURL); v != "" {
		settings.LLM.BaseURL = v
	}
	llmEnvKey := os.Getenv("OPENAI_API_KEY")
	if settings.LLM.Provider == domain.AIProviderAnthropic {
		llmEnvKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	settings.LLM.APIKey = firstNonEmpty(store.GetString(keyLLMAPIKey), llmEnvKey)

	if v := store.GetString(keyExtractionBaseURL); v != "" {
		settings.Extraction.BaseURL = v
	}
	if v := store.GetString(keyExtractionAPIKey); v != "" {
		settings.Extraction.APIKey = v
	}

	if v := store.GetInt(keyQueryTopK); v > 0 {
		settings.Query.TopK = v
	}
	if v := store.GetFloat(keyQueryThreshold); v > 0 {
		settings.Query.Threshold = v
	}
	if v := store.GetInt(keyQueryMinResults); v > 0 {
		settings.Query.MinResults = v
	}

	if v := store.GetInt(keyIngestChunkSize); v > 0 {
		settings.Ingest.ChunkSize = v
	}
	if v := store.GetInt(keyIngestChunkOverlap); v > 0 {
		settings.Ingest.ChunkOverlap = v
	}

	return settings
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
