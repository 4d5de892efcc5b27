package loaders

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"helperbot/internal/config"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

func newTestLoader(preventOutside bool, siteFilter string) *WebLoader {
	return NewWebLoader(config.CrawlerConfig{
		PreventOutside: preventOutside,
		SiteFilter:     siteFilter,
		TimeoutSeconds: 5,
		UserAgent:      "test-agent",
	}, logger.New("test"))
}

func sources(docs []*schema.Document) map[string]bool {
	out := make(map[string]bool, len(docs))
	for _, d := range docs {
		out[d.Source()] = true
	}
	return out
}

func TestWebLoaderFollowsLinksOneHop(t *testing.T) {
	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<body><p>home</p><a href="/a">A</a><a href="/a">A again</a><a href="/b">B</a></body>`)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		// Links on depth-1 pages must not be followed.
		fmt.Fprintf(w, `<body><p>page a</p><a href="%s/deep">deep</a></body>`, ts.URL)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<body><p>page b</p></body>`)
	})
	mux.HandleFunc("/deep", func(w http.ResponseWriter, r *http.Request) {
		t.Error("Crawler followed a link beyond depth 1")
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	docs, err := newTestLoader(true, "").Load(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("Expected 3 pages (seed + 2 links), got %d", len(docs))
	}
	got := sources(docs)
	for _, want := range []string{ts.URL + "/", ts.URL + "/a", ts.URL + "/b"} {
		if !got[want] {
			t.Errorf("Expected page %s in results, got %v", want, got)
		}
	}
}

func TestWebLoaderSameSiteRestriction(t *testing.T) {
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Crawler fetched an out-of-site link")
	}))
	defer external.Close()

	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprintf(w, `<body><a href="%s/x">elsewhere</a><a href="/ok">ok</a></body>`, external.URL)
			return
		}
		fmt.Fprint(w, `<body><p>ok page</p></body>`)
	}))
	defer ts.Close()

	docs, err := newTestLoader(true, "").Load(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected seed + 1 same-site page, got %d", len(docs))
	}
}

func TestWebLoaderSkipsFailingLinks(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<body><a href="/broken">broken</a><a href="/fine">fine</a></body>`)
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			fmt.Fprint(w, `<body><p>fine page</p></body>`)
		}
	}))
	defer ts.Close()

	docs, err := newTestLoader(true, "").Load(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := sources(docs)
	if got[ts.URL+"/broken"] {
		t.Error("Expected the failing page to be skipped")
	}
	if !got[ts.URL+"/fine"] {
		t.Errorf("Expected the healthy page to be kept, got %v", got)
	}
}

func TestWebLoaderSeedFailureIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := newTestLoader(true, "").Load(context.Background(), ts.URL+"/"); err == nil {
		t.Fatal("Expected an error for an unreachable seed")
	}
}

func TestWebLoaderCleansPages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<body><nav>menu bar</nav><p>Real content</p></body>`)
	}))
	defer ts.Close()

	docs, err := newTestLoader(true, "").Load(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if docs[0].Text != "Real content" {
		t.Errorf("Expected cleaned text, got %q", docs[0].Text)
	}
}
