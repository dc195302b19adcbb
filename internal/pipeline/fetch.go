package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/wikidata"
)

// NewEditorTags mark statement edits by non-autoconfirmed users. These
// edits require patrol review.
var NewEditorTags = []string{
	"new editor changing statement",
	"new editor removing statement",
}

// statementSummaryPatterns identify statement-level edit summaries
var statementSummaryPatterns = []string{
	"wbsetclaim",
	"wbcreateclaim",
	"wbremoveclaims",
	"wbsetclaimvalue",
	"wbsetreference",
	"wbremovereferences",
	"wbsetqualifier",
	"wbremovequalifiers",
}

// controlOverfetch compensates for client-side filtering of the
// control listing
const controlOverfetch = 5

// ChangeLister lists recent changes. *wikidata.Client satisfies it.
type ChangeLister interface {
	RecentChanges(ctx context.Context, opts wikidata.RecentChangesOptions) ([]*model.Edit, error)
}

// Fetcher selects statement edits from the recent-changes feed
type Fetcher struct {
	client ChangeLister
}

// NewFetcher creates a Fetcher over the given change lister
func NewFetcher(client ChangeLister) *Fetcher {
	return &Fetcher{client: client}
}

// FetchUnpatrolled lists up to total statement edits by new editors. With
// an empty tag every new-editor tag is queried in order until the total
// is reached; otherwise only the given tag.
func (f *Fetcher) FetchUnpatrolled(ctx context.Context, total int, tag string) ([]*model.Edit, error) {
	tags := NewEditorTags
	if tag != "" {
		tags = []string{tag}
	}

	var edits []*model.Edit
	for _, t := range tags {
		if len(edits) >= total {
			break
		}
		batch, err := f.client.RecentChanges(ctx, wikidata.RecentChangesOptions{
			Limit:       total - len(edits),
			Tag:         t,
			ExcludeBots: true,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch edits tagged %q: %w", t, err)
		}
		edits = append(edits, batch...)
	}
	return edits, nil
}

// FetchControl lists up to total statement edits by established users,
// autopatrolled by definition. The feed has no tag for these, so it is
// overfetched and filtered to statement-summary edits without new-editor
// tags. Fewer than total come back when the overfetch pool runs dry.
func (f *Fetcher) FetchControl(ctx context.Context, total int) ([]*model.Edit, error) {
	if total <= 0 {
		return nil, nil
	}

	pool, err := f.client.RecentChanges(ctx, wikidata.RecentChangesOptions{
		Limit:       total * controlOverfetch,
		ExcludeBots: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch control pool: %w", err)
	}

	var edits []*model.Edit
	for _, edit := range pool {
		if !isStatementEdit(edit.Comment) || hasNewEditorTag(edit.Tags) {
			continue
		}
		edits = append(edits, edit)
		if len(edits) == total {
			break
		}
	}
	return edits, nil
}

func isStatementEdit(comment string) bool {
	for _, pattern := range statementSummaryPatterns {
		if strings.Contains(comment, pattern) {
			return true
		}
	}
	return false
}

func hasNewEditorTag(tags []string) bool {
	for _, tag := range tags {
		for _, marker := range NewEditorTags {
			if tag == marker {
				return true
			}
		}
	}
	return false
}
