package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Could not write config file: %v", err)
	}
	return path
}

const minimalConfig = `
crawler:
  seedURLs:
    - https://example.com/
`

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-llm-key")
	t.Setenv("EMBEDDING_API_KEY", "test-embed-key")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Splitter.ChunkSize != 1000 || cfg.Splitter.ChunkOverlap != 200 {
		t.Errorf("Splitter defaults = %d/%d, want 1000/200", cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("TopK default = %d, want 4", cfg.Retrieval.TopK)
	}
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("LLM BaseURL default = %q", cfg.LLM.BaseURL)
	}
	if cfg.Server.Address != ":8000" {
		t.Errorf("Server address default = %q, want :8000", cfg.Server.Address)
	}
	if cfg.LLM.APIKey != "test-llm-key" {
		t.Errorf("LLM APIKey = %q, want the value from the environment", cfg.LLM.APIKey)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("EMBEDDING_API_KEY", "k")

	cfg, err := LoadConfig(writeConfig(t, `
splitter:
  chunkSize: 500
  chunkOverlap: 50
retrieval:
  topK: 7
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Splitter.ChunkSize != 500 || cfg.Splitter.ChunkOverlap != 50 {
		t.Errorf("Splitter = %d/%d, want the configured 500/50", cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("TopK = %d, want the configured 7", cfg.Retrieval.TopK)
	}
}

func TestLoadConfigMissingLLMKeyFails(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("EMBEDDING_API_KEY", "k")

	_, err := LoadConfig(writeConfig(t, minimalConfig))
	if err == nil {
		t.Fatal("Expected an error when the chat provider key is unset")
	}
	if !strings.Contains(err.Error(), "GROQ_API_KEY") {
		t.Errorf("Error %q should name the missing environment variable", err)
	}
}

func TestLoadConfigOllamaNeedsNoEmbeddingKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("EMBEDDING_API_KEY", "")

	cfg, err := LoadConfig(writeConfig(t, `
embedding:
  provider: ollama
  model: bge-m3
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, ollama should not require a key", err)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", cfg.Embedding.Provider)
	}
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}
