package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/worker"
)

// SearchResult is one entry returned to the judge. Error entries carry
// only the error field; the judge reads them as data, never as a
// failed call.
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Error   string `json:"error,omitempty"`
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Searcher runs web searches against a SearXNG instance
type Searcher struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	blocklist  *Blocklist
	baseURL    string
	timeout    time.Duration
	maxResults int
	userAgent  string
	maxBytes   int64
}

// NewSearcher creates a searcher backed by the configured SearXNG
// endpoint. The limiter is the shared per-domain one so search traffic
// counts against the same budget as page fetches.
func NewSearcher(cfg *model.Config, httpClient *http.Client, limiter *worker.Limiter, blocklist *Blocklist) *Searcher {
	if blocklist == nil {
		blocklist = NewBlocklist(nil)
	}
	return &Searcher{
		httpClient: httpClient,
		limiter:    limiter,
		blocklist:  blocklist,
		baseURL:    cfg.Search.URL,
		timeout:    cfg.Search.Timeout,
		maxResults: cfg.Search.MaxResults,
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
	}
}

// Search queries SearXNG and returns up to maxResults entries with
// blocked domains filtered out. Failures come back as a single error
// entry instead of a Go error, matching what a judge can act on.
func (s *Searcher) Search(ctx context.Context, query string) []SearchResult {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.baseURL); err != nil {
			return []SearchResult{{Error: "SearXNG request timed out"}}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return []SearchResult{{Error: "SearXNG error: " + err.Error()}}
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return []SearchResult{{Error: "SearXNG request timed out"}}
		}
		return []SearchResult{{Error: "SearXNG is unreachable at " + s.baseURL}}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return []SearchResult{{Error: fmt.Sprintf("SearXNG error: HTTP %d", resp.StatusCode)}}
	}

	var payload searxResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.maxBytes)).Decode(&payload); err != nil {
		return []SearchResult{{Error: "SearXNG returned invalid JSON"}}
	}

	results := make([]SearchResult, 0, s.maxResults)
	for _, item := range payload.Results {
		if s.blocklist.Blocks(item.URL) {
			continue
		}
		results = append(results, SearchResult{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Content,
		})
		if len(results) >= s.maxResults {
			break
		}
	}

	return results
}

// isTimeout reports whether an HTTP client error was a deadline or
// network timeout rather than a connection failure
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
