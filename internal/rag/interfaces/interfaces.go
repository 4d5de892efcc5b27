package interfaces

import (
	"context"

	"helperbot/internal/rag/schema"
)

// Loader is the interface for loading data from a source (a seed URL)
// and converting it into a list of Document objects.
type Loader interface {
	Load(ctx context.Context, url string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting a list of Documents into smaller chunks.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// VectorStore is the interface for the namespaced vector index.
// A namespace holds the chunks of exactly one ingestion run: Replace drops
// whatever the namespace held before writing the new batch.
type VectorStore interface {
	Replace(ctx context.Context, namespace string, docs []*schema.Document) error
	Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]*schema.Document, error)
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a large language model that can generate text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
