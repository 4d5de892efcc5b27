package embedding

import (
	"fmt"

	"helperbot/internal/config"
	"helperbot/internal/rag/interfaces"
)

// NewModel is a factory that creates the embedding client selected by the
// configuration. The same configuration must be used at ingestion and at
// query time so question vectors live in the same space as chunk vectors.
func NewModel(cfg config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIModel(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
