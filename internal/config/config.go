package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CrawlerConfig controls the ingestion crawl.
type CrawlerConfig struct {
	SeedURLs       []string `yaml:"seedURLs"`       // Starting points; the crawler goes 1 level deep from each.
	PreventOutside bool     `yaml:"preventOutside"` // Restrict followed links to the seed's host.
	SiteFilter     string   `yaml:"siteFilter"`     // Substring a followed URL must contain when PreventOutside is off.
	TimeoutSeconds int      `yaml:"timeoutSeconds"` // Per-request timeout.
	UserAgent      string   `yaml:"userAgent"`
}

// SplitterConfig selects and configures the chunking strategy.
type SplitterConfig struct {
	Type         string `yaml:"type"`         // "character" (default) or "token"
	ChunkSize    int    `yaml:"chunkSize"`    // Maximum chunk length.
	ChunkOverlap int    `yaml:"chunkOverlap"` // Overlap carried between consecutive chunks.
}

// MilvusConfig defines the vector index connection and layout.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus service address.
	Collection string `yaml:"collection"` // Collection holding all namespaces.
	Namespace  string `yaml:"namespace"`  // Partition written by ingestion and read at query time.
	Dim        int    `yaml:"dim"`        // Embedding dimension.
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`  // "openai" (any OpenAI-compatible endpoint) or "ollama"
	Model     string `yaml:"model"`     // Model name.
	BaseURL   string `yaml:"baseURL"`   // Optional endpoint override.
	APIKeyEnv string `yaml:"apiKeyEnv"` // Environment variable holding the API key.
	APIKey    string `yaml:"-"`         // Resolved at load time, never read from the file.
}

// LLMConfig configures the chat-completion provider. Any endpoint speaking
// the OpenAI wire format works; BaseURL points it at Groq by default.
type LLMConfig struct {
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"baseURL"`
	APIKeyEnv      string  `yaml:"apiKeyEnv"`
	APIKey         string  `yaml:"-"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"maxTokens"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	MaxRetries     int     `yaml:"maxRetries"`
}

// RetrievalConfig controls query-time retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"topK"` // Number of chunks fetched per question.
}

// RateLimiterConfig defines the token-bucket limiter in front of the HTTP surface.
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"`     // Tokens per second.
	Capacity int     `yaml:"capacity"` // Burst size.
}

// CircuitBreakerConfig defines the breaker around the chat provider.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // e.g. "30s"
}

// ServerConfig configures the serving process.
type ServerConfig struct {
	Address         string               `yaml:"address"`
	SuggestionsFile string               `yaml:"suggestionsFile"`
	PromptFile      string               `yaml:"promptFile"`
	RateLimiter     RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// LoggerConfig defines the log level.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root structure of the YAML configuration file.
type AppConfig struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Splitter  SplitterConfig  `yaml:"splitter"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Server    ServerConfig    `yaml:"server"`
}

// LoadConfig reads the YAML file at path, applies defaults, and resolves
// provider secrets from the environment. Missing required secrets are an
// error: both binaries refuse to run without them.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := resolveSecrets(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Crawler.TimeoutSeconds <= 0 {
		cfg.Crawler.TimeoutSeconds = 10
	}
	if cfg.Crawler.UserAgent == "" {
		cfg.Crawler.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}
	if cfg.Splitter.Type == "" {
		cfg.Splitter.Type = "character"
	}
	if cfg.Splitter.ChunkSize <= 0 {
		cfg.Splitter.ChunkSize = 1000
	}
	if cfg.Splitter.ChunkOverlap <= 0 {
		cfg.Splitter.ChunkOverlap = 200
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "site_chunks"
	}
	if cfg.Milvus.Namespace == "" {
		cfg.Milvus.Namespace = "helper_agent"
	}
	if cfg.Milvus.Dim <= 0 {
		cfg.Milvus.Dim = 1024
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.Temperature <= 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		cfg.LLM.TimeoutSeconds = 10
	}
	if cfg.LLM.MaxRetries <= 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.SuggestionsFile == "" {
		cfg.Server.SuggestionsFile = "suggestions.json"
	}
	if cfg.Server.PromptFile == "" {
		cfg.Server.PromptFile = "config/prompt.txt"
	}
}

func resolveSecrets(cfg *AppConfig) error {
	cfg.LLM.APIKey = os.Getenv(cfg.LLM.APIKeyEnv)
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("missing API key: environment variable %s is not set", cfg.LLM.APIKeyEnv)
	}

	// Ollama runs locally and needs no key; everything else does.
	if cfg.Embedding.Provider != "ollama" {
		cfg.Embedding.APIKey = os.Getenv(cfg.Embedding.APIKeyEnv)
		if cfg.Embedding.APIKey == "" {
			return fmt.Errorf("missing API key: environment variable %s is not set", cfg.Embedding.APIKeyEnv)
		}
	}
	return nil
}
