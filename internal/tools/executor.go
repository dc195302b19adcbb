// Package tools implements the web_search and web_fetch tools a judge
// may call during its investigation. Results and failures are both
// returned as strings: a tool call never errors, it answers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool names exposed to judges
const (
	ToolWebSearch = "web_search"
	ToolWebFetch  = "web_fetch"
)

// Executor routes tool calls from the investigation loop to the
// search and fetch implementations
type Executor struct {
	searcher *Searcher
	fetcher  *Fetcher
}

// NewExecutor creates a tool executor
func NewExecutor(searcher *Searcher, fetcher *Fetcher) *Executor {
	return &Executor{searcher: searcher, fetcher: fetcher}
}

type toolArgs struct {
	Query string `json:"query"`
	URL   string `json:"url"`
}

// Dispatch executes one tool call and returns the result string.
// Search results are JSON-encoded; fetch results are raw text.
// Malformed arguments and unknown tool names come back as error
// strings for the judge to read.
func (e *Executor) Dispatch(ctx context.Context, name, arguments string) string {
	var args toolArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "error: failed to parse tool call arguments as JSON: " + err.Error()
	}

	switch name {
	case ToolWebSearch:
		results := e.searcher.Search(ctx, args.Query)
		payload, err := json.Marshal(results)
		if err != nil {
			return "error: tool execution failed: " + err.Error()
		}
		return string(payload)
	case ToolWebFetch:
		return e.fetcher.Fetch(ctx, args.URL)
	default:
		return fmt.Sprintf("error: unknown tool '%s'. Valid tools are: %s, %s",
			name, ToolWebSearch, ToolWebFetch)
	}
}
