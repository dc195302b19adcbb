package judge

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/worker"
)

// RunVerdict runs one (edit, judge model) unit end to end: investigation
// with tools, then the verdict phase, then cost accounting. A unit whose
// cancel flag was set before the first turn is returned with a null
// verdict and makes no further API calls.
func (j *Judge) RunVerdict(ctx context.Context, judgeModel string, edit *model.Edit, cancel *worker.CancelFlag) (*model.VerdictRecord, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: j.systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: BuildEditContext(edit)},
	}

	s, err := j.Investigate(ctx, judgeModel, messages, cancel)
	if err != nil {
		return nil, err
	}

	record := &model.VerdictRecord{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Model:        judgeModel,
		RCID:         edit.RCID,
		RevID:        edit.RevID,
		Title:        edit.Title,
		DiffType:     string(model.DiffUnknown),
		FinishStatus: s.FinishStatus,
		Turns:        s.Turns,
		Sources:      []model.Source{},
	}
	if pe := edit.ParsedEdit; pe != nil {
		record.Property = pe.Property
		record.PropertyLabel = pe.PropertyLabel
		record.ValueLabel = pe.ValueLabel
	}
	if edit.EditDiff != nil && edit.EditDiff.Type != "" {
		record.DiffType = string(edit.EditDiff.Type)
	}

	// Cancelled units skip the verdict phase and the cost lookup. The
	// supervisor has already moved on; spending another inference call
	// on an abandoned unit only burns budget.
	if s.FinishStatus == StatusCancelled {
		record.PromptTokens = s.PromptTokens
		record.CompletionTokens = s.CompletionTokens
		return record, nil
	}

	verdict, err := j.ExtractVerdict(ctx, judgeModel, s)
	if err != nil {
		return nil, err
	}

	record.PromptTokens, record.CompletionTokens, record.CostUSD = j.AccountCost(ctx, s)

	if verdict != nil {
		if verdict.Verdict != "" {
			record.Verdict = &verdict.Verdict
		}
		if verdict.Rationale != "" {
			record.Rationale = &verdict.Rationale
		}
		if verdict.Sources != nil {
			record.Sources = verdict.Sources
		}
	}

	return record, nil
}
