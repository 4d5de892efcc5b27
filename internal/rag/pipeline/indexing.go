package pipeline

import (
	"context"
	"fmt"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

// IndexingPipeline orchestrates the ingestion batch: crawl every seed,
// deduplicate by source URL, split into chunks, embed, and replace the
// target namespace in the vector store.
type IndexingPipeline struct {
	loader      interfaces.Loader
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	loader interfaces.Loader,
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		loader:      loader,
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run executes one full ingestion. A seed that fails to crawl is logged and
// skipped; everything after crawling (embedding, upsert) is fatal to the
// run, since a partially written namespace must not be left behind as the
// final state.
func (p *IndexingPipeline) Run(ctx context.Context, seeds []string, namespace string) error {
	var all []*schema.Document
	for _, seed := range seeds {
		p.log.Info(fmt.Sprintf("Crawling: %s", seed))
		docs, err := p.loader.Load(ctx, seed)
		if err != nil {
			p.log.Warn(fmt.Sprintf("Could not crawl %s: %v", seed, err))
			continue
		}
		p.log.Info(fmt.Sprintf("Found %d pages under %s", len(docs), seed))
		all = append(all, docs...)
	}
	if len(all) == 0 {
		return fmt.Errorf("no pages crawled from %d seeds", len(seeds))
	}

	unique := DedupeBySource(all)
	p.log.Info(fmt.Sprintf("Total unique pages: %d", len(unique)))

	chunks, err := p.splitter.Split(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to split documents: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("splitting %d pages produced no chunks", len(unique))
	}
	p.log.Info(fmt.Sprintf("Created %d chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	for i, chunk := range chunks {
		chunk.Embedding = embeddings[i]
	}

	if err := p.vectorStore.Replace(ctx, namespace, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	p.log.Info(fmt.Sprintf("Ingestion complete: %d chunks stored in namespace %q", len(chunks), namespace))
	return nil
}

// DedupeBySource collapses documents sharing a source URL down to one,
// keeping the last occurrence in input order: later crawl results overwrite
// earlier ones for the same page. Output order is not significant.
func DedupeBySource(docs []*schema.Document) []*schema.Document {
	bySource := make(map[string]*schema.Document, len(docs))
	var order []string
	for _, doc := range docs {
		src := doc.Source()
		if _, ok := bySource[src]; !ok {
			order = append(order, src)
		}
		bySource[src] = doc
	}

	unique := make([]*schema.Document, 0, len(order))
	for _, src := range order {
		unique = append(unique, bySource[src])
	}
	return unique
}
