// Package judge runs the two-phase verdict protocol for one
// (edit, judge model) pair: a bounded tool-use investigation loop,
// then a structured verdict extraction, with OpenRouter cost
// accounting on top.
package judge

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/vigil/internal/model"
)

// ToolDispatcher executes one tool call and answers with a string.
// Satisfied by tools.Executor.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name, arguments string) string
}

// Judge drives verdict sessions against an OpenAI-compatible endpoint
type Judge struct {
	client        *openai.Client
	httpClient    *http.Client
	tools         ToolDispatcher
	apiKey        string
	baseURL       string
	maxTurns      int
	contextLimits map[string]int
	defaultLimit  int
	systemPrompt  string
}

// NewJudge creates a judge wired to the configured endpoint. The chat
// client gets a retrying transport for transient failures; everything
// above it sees at most one call per turn.
func NewJudge(cfg *model.Config, apiKey string, dispatcher ToolDispatcher, systemPrompt string) *Judge {
	httpClient := &http.Client{
		Timeout: cfg.Judges.RequestTimeout,
		Transport: &retryTransport{
			base:       http.DefaultTransport,
			maxRetries: cfg.Judges.MaxRetries,
		},
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = cfg.Judges.BaseURL
	clientConfig.HTTPClient = httpClient

	return &Judge{
		client:        openai.NewClientWithConfig(clientConfig),
		httpClient:    httpClient,
		tools:         dispatcher,
		apiKey:        apiKey,
		baseURL:       cfg.Judges.BaseURL,
		maxTurns:      cfg.Judges.MaxTurns,
		contextLimits: cfg.Judges.ContextLimits,
		defaultLimit:  cfg.Judges.DefaultContextLimit,
		systemPrompt:  systemPrompt,
	}
}

// contextLimit returns the context window size for a model
func (j *Judge) contextLimit(judgeModel string) int {
	if limit, ok := j.contextLimits[judgeModel]; ok {
		return limit
	}
	return j.defaultLimit
}

// retrySleep is replaced in tests
var retrySleep = time.Sleep

// retryTransport retries 429 and 5xx responses with jittered backoff.
// Bodies are replayed via GetBody, so only replayable requests retry.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		attemptReq := req
		if attempt > 0 {
			attemptReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return resp, err
				}
				attemptReq.Body = body
			}
		}

		resp, err = t.base.RoundTrip(attemptReq)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= t.maxRetries || !replayable(req) || req.Context().Err() != nil {
			return resp, err
		}

		if err == nil {
			// Drain before retrying so the connection is reusable
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
		}

		retrySleep(backoffDelay(attempt))
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.GetBody != nil
}

// backoffDelay doubles per attempt from 500ms with up to 50% jitter
func backoffDelay(attempt int) time.Duration {
	base := 500 * time.Millisecond << attempt
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	return base + jitter
}
