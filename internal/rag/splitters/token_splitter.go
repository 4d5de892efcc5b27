package splitters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
)

// TokenSplitter implements the Splitter interface by counting tokens instead
// of characters. Useful when the embedding model's context window, not the
// character count, is the binding limit.
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	tokenizer    *tiktoken.Tiktoken
}

// NewTokenSplitter creates a new TokenSplitter using the cl100k_base encoding.
func NewTokenSplitter(chunkSize, chunkOverlap int) (*TokenSplitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("invalid token splitter bounds: size %d, overlap %d", chunkSize, chunkOverlap)
	}
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		tokenizer:    tke,
	}, nil
}

// Split splits each document into chunks of at most ChunkSize tokens, with
// ChunkOverlap tokens repeated between consecutive chunks.
func (s *TokenSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document
	for _, doc := range docs {
		tokens := s.tokenizer.Encode(doc.Text, nil, nil)
		step := s.ChunkSize - s.ChunkOverlap

		index := 0
		for start := 0; start < len(tokens); start += step {
			end := start + s.ChunkSize
			if end > len(tokens) {
				end = len(tokens)
			}

			chunk := &schema.Document{
				ID:       uuid.New().String(),
				Text:     s.tokenizer.Decode(tokens[start:end]),
				Metadata: doc.CopyMetadata(),
			}
			chunk.Metadata[schema.MetadataKeyChunk] = index
			chunks = append(chunks, chunk)
			index++

			if end == len(tokens) {
				break
			}
		}
	}
	return chunks, nil
}

// compile-time check to ensure TokenSplitter implements the Splitter interface
var _ interfaces.Splitter = (*TokenSplitter)(nil)
