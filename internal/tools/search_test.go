package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/vigil/internal/model"
)

func testSearcher(serverURL string, blocklist *Blocklist) *Searcher {
	cfg := model.DefaultConfig()
	cfg.Search.URL = serverURL
	cfg.Search.Timeout = 2 * time.Second
	return NewSearcher(cfg, &http.Client{}, nil, blocklist)
}

func searxHandler(t *testing.T, results []map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("Expected format=json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"results": results}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestSearch_ReturnsResults(t *testing.T) {
	server := httptest.NewServer(searxHandler(t, []map[string]string{
		{
			"title":   "Test Article",
			"url":     "https://example.com/article",
			"content": "This is a snippet about the topic.",
		},
	}))
	defer server.Close()

	results := testSearcher(server.URL, nil).Search(context.Background(), "test query")

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Test Article" {
		t.Errorf("Expected title 'Test Article', got %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/article" {
		t.Errorf("Expected url 'https://example.com/article', got %q", results[0].URL)
	}
	if results[0].Snippet != "This is a snippet about the topic." {
		t.Errorf("Expected snippet to carry SearXNG content, got %q", results[0].Snippet)
	}
	if results[0].Error != "" {
		t.Errorf("Expected no error, got %q", results[0].Error)
	}
}

func TestSearch_SendsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer server.Close()

	testSearcher(server.URL, nil).Search(context.Background(), "Douglas Adams occupation")

	if gotQuery != "Douglas Adams occupation" {
		t.Errorf("Expected query to reach SearXNG, got %q", gotQuery)
	}
}

func TestSearch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	results := testSearcher(url, nil).Search(context.Background(), "test query")

	if len(results) != 1 {
		t.Fatalf("Expected 1 error entry, got %d results", len(results))
	}
	if !strings.Contains(results[0].Error, "unreachable") {
		t.Errorf("Expected unreachable error, got %q", results[0].Error)
	}
}

func TestSearch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer server.Close()

	s := testSearcher(server.URL, nil)
	s.timeout = 50 * time.Millisecond

	results := s.Search(context.Background(), "test query")

	if len(results) != 1 {
		t.Fatalf("Expected 1 error entry, got %d results", len(results))
	}
	if !strings.Contains(results[0].Error, "timed out") {
		t.Errorf("Expected timeout error, got %q", results[0].Error)
	}
}

func TestSearch_FiltersBlockedDomains(t *testing.T) {
	server := httptest.NewServer(searxHandler(t, []map[string]string{
		{"title": "Blocked", "url": "https://wikipedia.org/wiki/Test", "content": "x"},
		{"title": "Allowed", "url": "https://example.com/page", "content": "y"},
	}))
	defer server.Close()

	results := testSearcher(server.URL, NewBlocklist([]string{"wikipedia.org"})).
		Search(context.Background(), "test")

	for _, r := range results {
		if r.URL == "https://wikipedia.org/wiki/Test" {
			t.Error("Expected blocked URL to be filtered out")
		}
	}
	if len(results) != 1 || results[0].URL != "https://example.com/page" {
		t.Errorf("Expected only the allowed result, got %v", results)
	}
}

func TestSearch_CapsResults(t *testing.T) {
	var raw []map[string]string
	for i := 0; i < 15; i++ {
		raw = append(raw, map[string]string{
			"title":   fmt.Sprintf("Result %d", i),
			"url":     fmt.Sprintf("https://example.com/%d", i),
			"content": "snippet",
		})
	}
	server := httptest.NewServer(searxHandler(t, raw))
	defer server.Close()

	results := testSearcher(server.URL, nil).Search(context.Background(), "test")

	if len(results) != 10 {
		t.Errorf("Expected results capped at 10, got %d", len(results))
	}
}

func TestSearch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer server.Close()

	results := testSearcher(server.URL, nil).Search(context.Background(), "test")

	if len(results) != 1 {
		t.Fatalf("Expected 1 error entry, got %d results", len(results))
	}
	if !strings.Contains(results[0].Error, "invalid JSON") {
		t.Errorf("Expected invalid JSON error, got %q", results[0].Error)
	}
}

func TestSearch_MultipleResults(t *testing.T) {
	var raw []map[string]string
	for i := 0; i < 5; i++ {
		raw = append(raw, map[string]string{
			"title":   fmt.Sprintf("Result %d", i),
			"url":     fmt.Sprintf("https://example.com/%d", i),
			"content": "snippet",
		})
	}
	server := httptest.NewServer(searxHandler(t, raw))
	defer server.Close()

	results := testSearcher(server.URL, nil).Search(context.Background(), "test")

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	if results[0].Title != "Result 0" {
		t.Errorf("Expected first result 'Result 0', got %q", results[0].Title)
	}
	if results[4].Title != "Result 4" {
		t.Errorf("Expected last result 'Result 4', got %q", results[4].Title)
	}
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	results := testSearcher(server.URL, nil).Search(context.Background(), "test")

	if len(results) != 1 {
		t.Fatalf("Expected 1 error entry, got %d results", len(results))
	}
	if !strings.Contains(results[0].Error, "HTTP 502") {
		t.Errorf("Expected HTTP status in error, got %q", results[0].Error)
	}
}
