package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"helperbot/internal/llm"
	"helperbot/internal/suggestions"
	"helperbot/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAnswerer struct {
	answer string
	err    error
}

func (a *stubAnswerer) Run(ctx context.Context, question string) (string, error) {
	return a.answer, a.err
}

func newTestRouter(t *testing.T, answerer Answerer, suggestionsJSON string) *gin.Engine {
	t.Helper()
	log := logger.New("test")

	path := filepath.Join(t.TempDir(), "suggestions.json")
	if suggestionsJSON != "" {
		if err := os.WriteFile(path, []byte(suggestionsJSON), 0o644); err != nil {
			t.Fatalf("Could not write suggestions file: %v", err)
		}
	}

	h := NewHandler(answerer, suggestions.NewStore(path, log), log)
	return NewRouter(h, nil)
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeChat(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Could not decode response body %q: %v", rec.Body.String(), err)
	}
	return parsed.Response
}

func TestChatReturnsAnswer(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{answer: "We are open 9 to 5."}, "")

	rec := postChat(router, `{"message": "When are you open?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, expected 200", rec.Code)
	}
	if got := decodeChat(t, rec); got != "We are open 9 to 5." {
		t.Errorf("Response = %q, expected the answerer's output", got)
	}
}

func TestChatRateLimitedReturnsCooldownMessage(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{err: llm.ErrRateLimited}, "")

	rec := postChat(router, `{"message": "hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, expected 200 even when rate limited", rec.Code)
	}
	if got := decodeChat(t, rec); got != cooldownMessage {
		t.Errorf("Response = %q, expected the cooldown message", got)
	}
}

func TestChatUpstreamFailureReturnsFallbackMessage(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{err: errors.New("milvus unreachable")}, "")

	rec := postChat(router, `{"message": "hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, expected 200 despite the upstream failure", rec.Code)
	}
	if got := decodeChat(t, rec); got != failureMessage {
		t.Errorf("Response = %q, expected the generic failure message", got)
	}
}

func TestChatRejectsMissingMessage(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{answer: "unused"}, "")

	for _, body := range []string{`{}`, `{"message": ""}`, `not json`} {
		rec := postChat(router, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: status = %d, expected 400", body, rec.Code)
		}
	}
}

func TestSuggestionsReturnsConfiguredQuestions(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{}, `{"questions": ["What do you sell?", "Where are you located?"]}`)

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, expected 200", rec.Code)
	}
	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Could not decode body %q: %v", rec.Body.String(), err)
	}
	if len(parsed.Questions) != 2 || parsed.Questions[0] != "What do you sell?" {
		t.Errorf("Questions = %v, expected the configured list", parsed.Questions)
	}
}

func TestSuggestionsMissingFileReturnsEmptyList(t *testing.T) {
	router := newTestRouter(t, &stubAnswerer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, expected 200 even with no suggestions file", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"questions":[]}` {
		t.Errorf("Body = %q, expected an empty questions array", body)
	}
}

type denyAll struct{}

func (denyAll) Allow() bool { return false }

func TestRateLimitMiddlewareRejectsWhenExhausted(t *testing.T) {
	log := logger.New("test")
	h := NewHandler(&stubAnswerer{answer: "unused"}, suggestions.NewStore("unused.json", log), log)
	router := NewRouter(h, denyAll{})

	rec := postChat(router, `{"message": "hello"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, expected 429 from the rate limiter", rec.Code)
	}
}
