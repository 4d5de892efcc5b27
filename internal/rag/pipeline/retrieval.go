package pipeline

import (
	"context"
	"fmt"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

// RetrievalPipeline fetches the chunks most relevant to a question from the
// configured namespace. The question is embedded with the same model used at
// ingestion time.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	namespace   string
	topK        int
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	namespace string,
	topK int,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		namespace:   namespace,
		topK:        topK,
		log:         log,
	}
}

// Run returns up to topK chunks ordered most-similar first. No score
// threshold is applied: low-relevance chunks are still returned and it is
// the model's job to ignore them.
func (p *RetrievalPipeline) Run(ctx context.Context, question string) ([]*schema.Document, error) {
	embeddings, err := p.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding the question returned no vector")
	}

	docs, err := p.vectorStore.Query(ctx, p.namespace, embeddings[0], p.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	p.log.Debug(fmt.Sprintf("Retrieved %d chunks for question", len(docs)))
	return docs, nil
}
