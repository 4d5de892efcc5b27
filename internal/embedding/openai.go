package embedding

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"helperbot/internal/rag/interfaces"
)

// OpenAIModel is an embedding client for any provider speaking the OpenAI
// wire format. BaseURL selects the endpoint; the default is OpenAI itself.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a new OpenAIModel client.
func NewOpenAIModel(apiKey, baseURL, modelName string) (*OpenAIModel, error) {
	if modelName == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIModel{
		client: openai.NewClientWithConfig(config),
		model:  modelName,
	}, nil
}

// Embed generates one embedding vector per input text, in input order.
func (m *OpenAIModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	}

	resp, err := m.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// compile-time check to ensure OpenAIModel implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*OpenAIModel)(nil)
