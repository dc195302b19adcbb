package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const (
	// Generation stats lag the completion slightly on OpenRouter
	costSettleDelay   = 500 * time.Millisecond
	costLookupTimeout = 10 * time.Second
)

// costSleep is replaced in tests
var costSleep = time.Sleep

type generationStats struct {
	PromptTokens     *int
	CompletionTokens *int
	CostUSD          *float64
}

type generationResponse struct {
	Data struct {
		NativeTokensPrompt     *int     `json:"native_tokens_prompt"`
		NativeTokensCompletion *int     `json:"native_tokens_completion"`
		TotalCost              *float64 `json:"total_cost"`
	} `json:"data"`
}

// fetchGenerationStats asks the generation endpoint for authoritative
// token and cost numbers. Any failure returns nil; cost lookup never
// fails a unit.
func (j *Judge) fetchGenerationStats(ctx context.Context, generationID string) *generationStats {
	costSleep(costSettleDelay)

	reqCtx, cancel := context.WithTimeout(ctx, costLookupTimeout)
	defer cancel()

	lookupURL := j.baseURL + "/generation?id=" + url.QueryEscape(generationID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil
	}

	return &generationStats{
		PromptTokens:     payload.Data.NativeTokensPrompt,
		CompletionTokens: payload.Data.NativeTokensCompletion,
		CostUSD:          payload.Data.TotalCost,
	}
}

// AccountCost sums authoritative tokens and cost across the session's
// generations, tolerating nulls per field. When no generation reports
// a token count, the SDK-side sums stand in; cost stays null rather
// than guessed.
func (j *Judge) AccountCost(ctx context.Context, s *Session) (promptTokens, completionTokens int, costUSD *float64) {
	var authPrompt, authCompletion int
	var cost *float64

	for _, id := range s.GenerationIDs {
		stats := j.fetchGenerationStats(ctx, id)
		if stats == nil {
			continue
		}
		if stats.CostUSD != nil {
			if cost == nil {
				cost = new(float64)
			}
			*cost += *stats.CostUSD
		}
		if stats.PromptTokens != nil {
			authPrompt += *stats.PromptTokens
		}
		if stats.CompletionTokens != nil {
			authCompletion += *stats.CompletionTokens
		}
	}

	promptTokens = authPrompt
	if promptTokens == 0 {
		promptTokens = s.PromptTokens
	}
	completionTokens = authCompletion
	if completionTokens == 0 {
		completionTokens = s.CompletionTokens
	}
	return promptTokens, completionTokens, cost
}
