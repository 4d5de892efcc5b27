package loaders

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// junkTags are removed with their whole subtree before text extraction, so
// menus, footers, and scripts never end up in the indexed content.
var junkTags = map[string]bool{
	"nav":      true,
	"header":   true,
	"footer":   true,
	"script":   true,
	"style":    true,
	"aside":    true,
	"form":     true,
	"noscript": true,
}

// junkClassPattern matches class attributes of containers that carry page
// chrome rather than content.
var junkClassPattern = regexp.MustCompile(`(?i)(menu|nav|sidebar|cookie|banner)`)

// CleanHTML extracts the readable text of an HTML page. Junk elements and
// any element whose class matches junkClassPattern are dropped with their
// descendants; remaining text nodes are joined with single spaces.
// The function is pure: identical input yields identical output.
func CleanHTML(raw string) string {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var parts []string
	collectText(root, &parts)
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode {
		if junkTags[n.Data] {
			return
		}
		for _, attr := range n.Attr {
			if attr.Key == "class" && junkClassPattern.MatchString(attr.Val) {
				return
			}
		}
	}

	if n.Type == html.TextNode {
		// Fields collapses internal runs of whitespace as well.
		if fields := strings.Fields(n.Data); len(fields) > 0 {
			*parts = append(*parts, strings.Join(fields, " "))
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
