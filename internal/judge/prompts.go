package judge

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/precheck"
)

// defaultSystemPrompt is used when no prompt file is configured
const defaultSystemPrompt = `You are a fact-checking judge for Wikidata. You receive one recent edit to a
Wikidata item, together with the item's surrounding statements and a
verification question. Your job is to decide whether the edited statement is
factually correct, by researching it on the web.

## Tools

You have two tools:

- web_search: search the web. Use short, targeted queries built from the item
  label and the claimed value, not the raw Q/P identifiers.
- web_fetch: fetch a URL and read its extracted text. Use it to confirm what a
  search snippet only suggests. A fetch may fail or return an error string;
  treat that as "could not check this source" and move on.

Do not cite Wikidata or its mirrors as evidence for a Wikidata edit. Prefer
primary and reputable secondary sources. Two or three tool calls are usually
enough; stop investigating once the answer is clear or once further searching
stops producing new information.

## Context warnings in the question

The verification question may carry WARNING lines about ontology problems,
for example a subclass relation added to an item that looks like an instance,
or a value that is Wikidata-internal bookkeeping. Weigh these warnings: an
edit can be textually sourced yet still ontologically wrong for this item.

## Verdict

When you are done investigating you will be asked for a JSON verdict. The
verdict field must be one of:

- verified-high: an independent source you fetched confirms the claim.
- verified-low: supported, but only by weak, derivative, or unfetchable
  sources.
- plausible: consistent with everything you found, but not confirmed.
- unverifiable: you found no usable sources either way.
- suspect: conflicting signals, leaning wrong, but not conclusive.
- incorrect: a source you fetched contradicts the claim.

List every source you relied on. Mark provenance "verified" only for URLs you
actually fetched and read; sources known only from search snippets are
"reported". Keep the rationale to a few sentences grounded in what the
sources say.`

const noQuestionPlaceholder = "(No verification question generated - parsed edit may be missing.)"

// LoadPrompt returns the system prompt, reading path when set and
// falling back to the built-in prompt otherwise.
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt %s: %w", path, err)
	}
	return string(data), nil
}

// editMeta is the slice of edit metadata shown to the judge. The raw
// comment is omitted: the summary already appears parsed, and free-text
// comments can carry injection attempts.
type editMeta struct {
	RCID      int64    `yaml:"rcid"`
	RevID     int64    `yaml:"revid"`
	Title     string   `yaml:"title"`
	User      string   `yaml:"user"`
	Timestamp string   `yaml:"timestamp"`
	Tags      []string `yaml:"tags"`
}

// BuildEditContext renders one enriched edit as the user message for the
// investigation phase: metadata, parsed edit, item context, removed
// claim when present, and the verification question with any ontology
// warnings attached.
func BuildEditContext(edit *model.Edit) string {
	meta := editMeta{
		RCID:      edit.RCID,
		RevID:     edit.RevID,
		Title:     edit.Title,
		User:      edit.User,
		Timestamp: edit.Timestamp,
		Tags:      edit.Tags,
	}

	parts := []string{"## Edit to verify\n" + marshalYAML(meta)}
	if edit.ParsedEdit != nil {
		parts = append(parts, "\n## Parsed edit\n"+marshalYAML(edit.ParsedEdit))
	}
	if edit.Item != nil {
		parts = append(parts, "\n## Item context\n"+marshalYAML(edit.Item))
	}
	if edit.RemovedClaim != nil {
		parts = append(parts, "\n## Removed claim\n"+marshalYAML(edit.RemovedClaim))
	}

	question := precheck.Question(edit)
	if question == "" {
		question = noQuestionPlaceholder
	}
	parts = append(parts, "\n## Verification question\n"+question)

	return strings.Join(parts, "\n")
}

func marshalYAML(v interface{}) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("(unrenderable: %v)", err)
	}
	return string(data)
}
