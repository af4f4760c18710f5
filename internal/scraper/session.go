package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Session is the minimal browsing surface a concrete scraper drives: load a
// page, submit a form, keep cookies across both. Tests substitute a fake that
// serves canned documents.
type Session interface {
	// Navigate fetches the URL with GET and parses the response body.
	Navigate(ctx context.Context, rawURL string) (*html.Node, error)

	// SubmitForm posts url-encoded fields to the action URL and parses the
	// response body, following redirects.
	SubmitForm(ctx context.Context, action string, fields url.Values) (*html.Node, error)

	// Close releases the session.
	Close() error
}

// SessionFactory produces a fresh session for each scrape. Sessions are not
// reused across scrapes so that cookies from one account never leak into
// another.
type SessionFactory func() Session

const defaultSessionTimeout = 60 * time.Second

type httpSession struct {
	client *http.Client
}

// NewHTTPSession creates a cookie-keeping session backed by net/http.
func NewHTTPSession() Session {
	jar, _ := cookiejar.New(nil)
	return &httpSession{
		client: &http.Client{
			Jar:     jar,
			Timeout: defaultSessionTimeout,
		},
	}
}

func (s *httpSession) Navigate(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	return s.do(req)
}

func (s *httpSession) SubmitForm(ctx context.Context, action string, fields url.Values) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *httpSession) do(req *http.Request) (*html.Node, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request to %s returned status %d", req.URL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response from %s: %w", req.URL, err)
	}
	return doc, nil
}

func (s *httpSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// NodeText collects the concatenated text content of a node, trimmed.
func NodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// FindByClass returns the first element carrying the CSS class, or nil.
func FindByClass(doc *html.Node, class string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, class) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// TextByClass returns the trimmed text of the first element with the class,
// or the empty string when none exists.
func TextByClass(doc *html.Node, class string) string {
	n := FindByClass(doc, class)
	if n == nil {
		return ""
	}
	return NodeText(n)
}

// TableRows extracts the cell texts of every body row in the first table
// carrying the class. Header rows (cells that are th elements) are skipped.
func TableRows(doc *html.Node, tableClass string) [][]string {
	table := FindByClass(doc, tableClass)
	if table == nil {
		return nil
	}

	var rows [][]string
	for _, tr := range elementsByTag(table, "tr") {
		var cells []string
		header := false
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "th":
				header = true
			case "td":
				cells = append(cells, NodeText(c))
			}
		}
		if header || len(cells) == 0 {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func elementsByTag(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
