package suggestions

import (
	"encoding/json"
	"fmt"
	"os"

	"helperbot/pkg/logger"
)

// Store reads the starter-question list shown to new chat sessions from a
// local JSON file of the form {"questions": ["...", ...]}. The file is
// maintained by hand and re-read on every request so edits show up without
// a restart.
type Store struct {
	path string
	log  *logger.Logger
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string, log *logger.Logger) *Store {
	return &Store{path: path, log: log}
}

type fileFormat struct {
	Questions []string `json:"questions"`
}

// Load returns the configured questions. A missing or malformed file
// degrades to an empty list; it never fails the request.
func (s *Store) Load() []string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Could not read suggestions file %s: %v", s.path, err))
		return []string{}
	}

	var parsed fileFormat
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.log.Warn(fmt.Sprintf("Suggestions file %s has a syntax error: %v", s.path, err))
		return []string{}
	}
	if parsed.Questions == nil {
		return []string{}
	}
	return parsed.Questions
}
