package splitters

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
)

// boundarySeparators, in preference order: paragraph break, line break,
// sentence end, word break. A hard character cut is the fallback.
var boundarySeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// CharacterSplitter implements the Splitter interface by cutting text into
// chunks of at most ChunkSize characters, with ChunkOverlap characters
// carried over between consecutive chunks. Cuts prefer natural boundaries.
//
// Splitting is deterministic: re-splitting identical input yields identical
// chunk texts. Concatenating the chunks with each chunk's leading overlap
// removed reconstructs the input.
type CharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewCharacterSplitter creates a CharacterSplitter. The overlap must be less
// than half the chunk size so every cut makes forward progress.
func NewCharacterSplitter(chunkSize, chunkOverlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap*2 >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", chunkOverlap, chunkSize/2)
	}
	return &CharacterSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Split splits each document's text into chunks. Each chunk carries a copy
// of its source document's metadata plus its sequence index.
func (s *CharacterSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document
	for _, doc := range docs {
		for i, text := range s.splitText(doc.Text) {
			chunk := &schema.Document{
				ID:       uuid.New().String(),
				Text:     text,
				Metadata: doc.CopyMetadata(),
			}
			chunk.Metadata[schema.MetadataKeyChunk] = i
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *CharacterSplitter) splitText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		cut := s.findBoundary(runes, start, end)
		out = append(out, string(runes[start:cut]))
		start = cut - s.ChunkOverlap
	}
	return out
}

// findBoundary picks the cut position for a full chunk spanning [start, end).
// It takes the last occurrence of the most-preferred separator in the window,
// as long as cutting there keeps the chunk at least half full; otherwise it
// falls back to a hard cut at end.
func (s *CharacterSplitter) findBoundary(runes []rune, start, end int) int {
	window := string(runes[start:end])
	min := (end - start) / 2
	for _, sep := range boundarySeparators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := utf8.RuneCountInString(window[:idx+len(sep)])
		if cut >= min {
			return start + cut
		}
	}
	return end
}

// compile-time check to ensure CharacterSplitter implements the Splitter interface
var _ interfaces.Splitter = (*CharacterSplitter)(nil)
