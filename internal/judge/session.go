package judge

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/ppiankov/vigil/internal/tools"
	"github.com/ppiankov/vigil/internal/worker"
)

// Terminal statuses of an investigation
const (
	StatusStop      = "stop"
	StatusLength    = "length"
	StatusMaxTurns  = "max_turns"
	StatusCancelled = "cancelled"
)

// Session is the state of one investigation: the transcript, token
// accumulators, generation IDs for cost lookup, and how it ended.
// Created per (edit, judge) pair and discarded after the verdict.
type Session struct {
	Messages         []openai.ChatCompletionMessage
	PromptTokens     int
	CompletionTokens int
	GenerationIDs    []string
	FinishStatus     string
	Turns            int
}

var toolDefinitions = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        tools.ToolWebSearch,
			Description: "Search the web for information. Returns titles, URLs, and snippets.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {Type: jsonschema.String, Description: "Search query"},
				},
				Required: []string{"query"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        tools.ToolWebFetch,
			Description: "Fetch and read the text content of a web page.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"url": {Type: jsonschema.String, Description: "URL to fetch"},
				},
				Required: []string{"url"},
			},
		},
	},
}

// Investigate runs the tool-calling loop until the judge stops, the
// turn budget runs out, or the cancel flag is set. The flag is checked
// only between turns, never mid-call. Transport errors surface as a
// real error; everything else lands in the session's finish status.
func (j *Judge) Investigate(ctx context.Context, judgeModel string, messages []openai.ChatCompletionMessage, cancel *worker.CancelFlag) (*Session, error) {
	s := &Session{Messages: messages}
	limit := j.contextLimit(judgeModel)

	for turn := 0; turn < j.maxTurns; turn++ {
		if cancel != nil && cancel.IsSet() {
			fmt.Fprintf(os.Stderr, "WARNING: %s investigation cancelled by timeout after %d turns\n", judgeModel, turn)
			s.FinishStatus = StatusCancelled
			s.Turns = turn
			return s, nil
		}

		resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:      judgeModel,
			Messages:   s.Messages,
			Tools:      toolDefinitions,
			ToolChoice: "auto",
		})
		if err != nil {
			return s, fmt.Errorf("chat completion for %s: %w", judgeModel, err)
		}

		s.PromptTokens += resp.Usage.PromptTokens
		s.CompletionTokens += resp.Usage.CompletionTokens
		if resp.ID != "" {
			s.GenerationIDs = append(s.GenerationIDs, resp.ID)
		}

		if len(resp.Choices) == 0 {
			return s, fmt.Errorf("chat completion for %s: no choices in response", judgeModel)
		}
		choice := resp.Choices[0]

		cumulative := s.PromptTokens + s.CompletionTokens
		if float64(cumulative) > 0.8*float64(limit) {
			fmt.Fprintf(os.Stderr, "WARNING: %s at %d/%d tokens (%.0f%% of context window)\n",
				judgeModel, cumulative, limit, 100*float64(cumulative)/float64(limit))
		}

		switch choice.FinishReason {
		case openai.FinishReasonStop:
			s.Messages = append(s.Messages, choice.Message)
			s.FinishStatus = StatusStop
			s.Turns = turn + 1
			return s, nil

		case openai.FinishReasonLength:
			fmt.Fprintf(os.Stderr, "WARNING: %s hit length limit, verdict may be incomplete\n", judgeModel)
			s.Messages = append(s.Messages, choice.Message)
			s.FinishStatus = StatusLength
			s.Turns = turn + 1
			return s, nil

		case openai.FinishReasonToolCalls:
			s.Messages = append(s.Messages, choice.Message)
			for _, tc := range choice.Message.ToolCalls {
				result := j.tools.Dispatch(ctx, tc.Function.Name, tc.Function.Arguments)
				s.Messages = append(s.Messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    result,
					ToolCallID: tc.ID,
				})
			}

		default:
			fmt.Fprintf(os.Stderr, "WARNING: unexpected finish_reason %q from %s\n", choice.FinishReason, judgeModel)
			s.Messages = append(s.Messages, choice.Message)
			s.FinishStatus = StatusStop
			s.Turns = turn + 1
			return s, nil
		}
	}

	fmt.Fprintf(os.Stderr, "WARNING: %s hit max turns (%d) without completing investigation\n", judgeModel, j.maxTurns)
	s.FinishStatus = StatusMaxTurns
	s.Turns = j.maxTurns
	return s, nil
}
