package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/vigil/internal/model"
)

// verdictSchemaJSON is shown to the judge verbatim in the verdict
// request. Kept as literal text so the prompt is stable regardless of
// how Go marshals maps.
const verdictSchemaJSON = `{
  "type": "object",
  "properties": {
    "verdict": {
      "type": "string",
      "enum": ["verified-high", "verified-low", "plausible", "unverifiable", "suspect", "incorrect"]
    },
    "rationale": {"type": "string"},
    "sources": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {"type": "string"},
          "supports_claim": {"type": "boolean"},
          "provenance": {"type": "string", "enum": ["verified", "reported"]}
        },
        "required": ["url", "supports_claim", "provenance"]
      }
    }
  },
  "required": ["verdict", "rationale", "sources"]
}`

const verdictRequest = "Based on your investigation, please provide your final verdict as JSON. " +
	"Use this exact schema:\n\n" + verdictSchemaJSON +
	"\n\nRespond with only valid JSON matching the schema."

// ExtractVerdict runs the structured verdict phase: one call with
// response_format json_object and no tools. Invalid or empty verdict
// content yields a nil verdict, not an error; the session still
// accumulates the call's tokens and generation ID.
func (j *Judge) ExtractVerdict(ctx context.Context, judgeModel string, s *Session) (*model.VerdictData, error) {
	s.Messages = append(s.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: verdictRequest,
	})

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    judgeModel,
		Messages: s.Messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("verdict extraction for %s: %w", judgeModel, err)
	}

	s.PromptTokens += resp.Usage.PromptTokens
	s.CompletionTokens += resp.Usage.CompletionTokens
	if resp.ID != "" {
		s.GenerationIDs = append(s.GenerationIDs, resp.ID)
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, nil
	}

	var verdict model.VerdictData
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %s returned invalid JSON in verdict phase. Raw: %.200s\n", judgeModel, content)
		return nil, nil
	}

	return &verdict, nil
}
