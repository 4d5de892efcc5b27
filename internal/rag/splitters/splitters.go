package splitters

import (
	"fmt"

	"helperbot/internal/config"
	"helperbot/internal/rag/interfaces"
)

// New is a factory that creates the splitter selected by the configuration.
func New(cfg config.SplitterConfig) (interfaces.Splitter, error) {
	switch cfg.Type {
	case "character", "":
		return NewCharacterSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	case "token":
		return NewTokenSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	default:
		return nil, fmt.Errorf("unsupported splitter type: %s", cfg.Type)
	}
}
