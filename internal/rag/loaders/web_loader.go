package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"helperbot/internal/config"
	"helperbot/internal/rag/interfaces"
	"helperbot/internal/rag/schema"
	"helperbot/pkg/logger"
)

// maxBodyBytes caps how much of a single page is read.
const maxBodyBytes = 4 << 20

// WebLoader implements the Loader interface for crawling a website.
// Load fetches the seed page and every distinct page it links to, exactly
// one hop deep. A failure on any single page is logged and skipped so one
// dead link cannot abort the rest of the crawl.
type WebLoader struct {
	client         *http.Client
	userAgent      string
	preventOutside bool
	siteFilter     string
	log            *logger.Logger
}

// NewWebLoader creates a WebLoader from the crawler configuration.
func NewWebLoader(cfg config.CrawlerConfig, log *logger.Logger) *WebLoader {
	return &WebLoader{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgent:      cfg.UserAgent,
		preventOutside: cfg.PreventOutside,
		siteFilter:     cfg.SiteFilter,
		log:            log,
	}
}

// Load fetches the seed URL and the pages it links to, cleans each page's
// markup, and returns one Document per successfully fetched page. A seed
// that cannot be fetched at all is an error; link failures are not.
func (l *WebLoader) Load(ctx context.Context, seedURL string) ([]*schema.Document, error) {
	base, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}

	seedBody, err := l.fetch(ctx, seedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch seed %s: %w", seedURL, err)
	}

	canonical := canonicalURL(base)
	seen := map[string]bool{canonical: true}
	docs := []*schema.Document{newPageDocument(canonical, seedBody)}

	// Depth 1: pages linked from the seed. Links found on those pages are
	// never followed.
	for _, link := range extractLinks(seedBody, base) {
		if seen[link] {
			continue
		}
		seen[link] = true

		if !l.allowed(link, base) {
			l.log.Debug(fmt.Sprintf("Skipping out-of-site link: %s", link))
			continue
		}

		body, err := l.fetch(ctx, link)
		if err != nil {
			l.log.Warn(fmt.Sprintf("Could not crawl %s: %v", link, err))
			continue
		}
		docs = append(docs, newPageDocument(link, body))
	}

	return docs, nil
}

// allowed reports whether a discovered link may be fetched. With
// preventOutside set only the seed's host qualifies; otherwise any host
// passes as long as the URL contains the configured site filter, which
// tolerates protocol and www redirects without wandering off to social links.
func (l *WebLoader) allowed(link string, base *url.URL) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if l.preventOutside && u.Host != base.Host {
		return false
	}
	if l.siteFilter != "" && !strings.Contains(link, l.siteFilter) {
		return false
	}
	return true
}

func (l *WebLoader) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func newPageDocument(pageURL, rawMarkup string) *schema.Document {
	return &schema.Document{
		ID:   uuid.New().String(),
		Text: CleanHTML(rawMarkup),
		Metadata: map[string]interface{}{
			schema.MetadataKeySource: pageURL,
		},
	}
}

// extractLinks returns the distinct href targets of a page, resolved against
// its URL. Only http(s) links are kept and fragments are stripped, so
// anchors to the same page do not count as new pages.
func extractLinks(rawMarkup string, base *url.URL) []string {
	z := html.NewTokenizer(strings.NewReader(rawMarkup))
	seen := make(map[string]bool)
	var links []string

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return links
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "href" {
				if link, ok := resolveLink(string(val), base); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
			if !more {
				break
			}
		}
	}
}

func resolveLink(href string, base *url.URL) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return canonicalURL(u), true
}

func canonicalURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	return c.String()
}

// compile-time check to ensure WebLoader implements the Loader interface
var _ interfaces.Loader = (*WebLoader)(nil)
