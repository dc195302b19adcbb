package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/util"
	"github.com/ppiankov/vigil/internal/worker"
)

const truncationNotice = "\n\n[Truncated - full page was longer]"

// Fetcher retrieves a web page and reduces it to readable text for a
// judge. Every failure mode is a string starting with "error: " so the
// judge can reason about it instead of the call failing.
type Fetcher struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	blocklist  *Blocklist
	timeout    time.Duration
	maxChars   int
	maxBytes   int64
	userAgent  string
}

// NewFetcher creates a page fetcher. robots may be nil to disable the
// robots.txt gate.
func NewFetcher(cfg *model.Config, httpClient *http.Client, limiter *worker.Limiter, robots *util.RobotsChecker, blocklist *Blocklist) *Fetcher {
	if blocklist == nil {
		blocklist = NewBlocklist(nil)
	}
	return &Fetcher{
		httpClient: httpClient,
		limiter:    limiter,
		robots:     robots,
		blocklist:  blocklist,
		timeout:    cfg.Fetch.Timeout,
		maxChars:   cfg.Fetch.MaxChars,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		userAgent:  cfg.HTTP.UserAgent,
	}
}

// Fetch downloads the URL and extracts its article text, truncated at
// the configured ceiling. Blocked domains and robots.txt disallows are
// checked before any request is made.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	if f.blocklist.Blocks(rawURL) {
		return "error: blocked_domain"
	}

	crawlDelay := time.Duration(0)
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return "error: blocked_by_robots"
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return "error: timeout"
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "error: " + err.Error()
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "error: timeout"
		}
		return "error: " + err.Error()
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return "error: HTTP 403 Forbidden"
	case resp.StatusCode == http.StatusNotFound:
		return "error: HTTP 404 Not Found"
	case resp.StatusCode != http.StatusOK:
		return fmt.Sprintf("error: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "error: " + err.Error()
	}

	// resp.Request.URL is the final URL after redirects
	text := extractText(body, resp.Request.URL)
	if text == "" {
		return "error: extraction_empty"
	}

	return truncate(text, f.maxChars)
}

// extractText runs readability extraction and falls back to a plain
// visible-text walk when no article body is found
func extractText(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}
	return visibleText(body)
}

// visibleText collects text nodes from the HTML, skipping script and
// style subtrees
func visibleText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String())
}

// truncate caps the text at max bytes, backing off to a rune boundary,
// and appends an explicit notice so the judge knows the page continued
func truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationNotice
}
