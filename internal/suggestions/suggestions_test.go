package suggestions

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"helperbot/pkg/logger"
)

func storeWithContent(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suggestions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Could not write suggestions file: %v", err)
	}
	return NewStore(path, logger.New("test"))
}

func TestLoadReturnsQuestions(t *testing.T) {
	store := storeWithContent(t, `{"questions": ["What do you sell?", "How do I contact support?"]}`)

	got := store.Load()
	want := []string{"What do you sell?", "How do I contact support?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestLoadMissingFileReturnsEmptyList(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"), logger.New("test"))

	got := store.Load()
	if got == nil || len(got) != 0 {
		t.Errorf("Load() = %#v, want an empty non-nil slice", got)
	}
}

func TestLoadMalformedFileReturnsEmptyList(t *testing.T) {
	for _, content := range []string{`{"questions": "not a list"}`, `{`, ``} {
		store := storeWithContent(t, content)
		got := store.Load()
		if got == nil || len(got) != 0 {
			t.Errorf("Load() with content %q = %#v, want an empty non-nil slice", content, got)
		}
	}
}

func TestLoadPicksUpFileEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	if err := os.WriteFile(path, []byte(`{"questions": ["old"]}`), 0o644); err != nil {
		t.Fatalf("Could not write suggestions file: %v", err)
	}
	store := NewStore(path, logger.New("test"))

	if got := store.Load(); len(got) != 1 || got[0] != "old" {
		t.Fatalf("Load() = %v, want the initial question", got)
	}

	if err := os.WriteFile(path, []byte(`{"questions": ["new"]}`), 0o644); err != nil {
		t.Fatalf("Could not rewrite suggestions file: %v", err)
	}
	if got := store.Load(); len(got) != 1 || got[0] != "new" {
		t.Errorf("Load() = %v, want the edited question without a restart", got)
	}
}
