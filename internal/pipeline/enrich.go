package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/vigil/internal/diff"
	"github.com/ppiankov/vigil/internal/labels"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/wikidata"
)

// EntityFetcher fetches entity state at specific revisions
type EntityFetcher interface {
	EntityAtRevision(ctx context.Context, qid string, revid int64) (*wikidata.Entity, error)
}

// Enricher reconstructs what each edit changed. It parses edit summaries,
// fetches the revisions around each edit, serializes item context with
// resolved labels, and computes per-edit diffs.
type Enricher struct {
	fetcher  EntityFetcher
	resolver *labels.Resolver
}

// NewEnricher creates an Enricher sharing the given fetcher and resolver
func NewEnricher(fetcher EntityFetcher, resolver *labels.Resolver) *Enricher {
	return &Enricher{fetcher: fetcher, resolver: resolver}
}

// EnrichGroup enriches all edits of one group in place. Each unique
// revision among the group's old/new pairs is fetched exactly once, and
// the shared item context comes from the group's newest revision.
// Individual fetch failures degrade the affected edits instead of
// aborting the group; only context cancellation returns an error.
func (e *Enricher) EnrichGroup(ctx context.Context, group []*model.Edit) error {
	if len(group) == 0 {
		return nil
	}
	qid := group[0].Title

	revisions, fetchErrs, err := e.fetchRevisions(ctx, qid, group)
	if err != nil {
		return err
	}

	parsed := make([]*model.ParsedEdit, len(group))
	for i, edit := range group {
		parsed[i] = diff.ParseEditSummary(edit.Comment)
	}

	e.warmLabelCache(ctx, qid, revisions, parsed)

	shared := e.sharedItemContext(ctx, group, revisions, fetchErrs)

	for i, edit := range group {
		e.enrichEdit(ctx, edit, parsed[i], shared, revisions, fetchErrs)
	}
	return nil
}

// fetchRevisions fetches each unique revision referenced by the group,
// ascending. Failures are recorded per revision, not returned.
func (e *Enricher) fetchRevisions(ctx context.Context, qid string, group []*model.Edit) (map[int64]*wikidata.Entity, map[int64]string, error) {
	seen := make(map[int64]bool)
	var revids []int64
	for _, edit := range group {
		for _, rid := range []int64{edit.OldRevID, edit.RevID} {
			if rid > 0 && !seen[rid] {
				seen[rid] = true
				revids = append(revids, rid)
			}
		}
	}
	sort.Slice(revids, func(i, j int) bool { return revids[i] < revids[j] })

	revisions := make(map[int64]*wikidata.Entity, len(revids))
	fetchErrs := make(map[int64]string)
	for _, rid := range revids {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		entity, err := e.fetcher.EntityAtRevision(ctx, qid, rid)
		if err != nil {
			fetchErrs[rid] = err.Error()
			continue
		}
		revisions[rid] = entity
	}
	return revisions, fetchErrs, nil
}

// warmLabelCache primes the edited item's own terms and batch-resolves
// every entity ID the serialization pass will need, so that pass makes
// no per-ID requests.
func (e *Enricher) warmLabelCache(ctx context.Context, qid string, revisions map[int64]*wikidata.Entity, parsed []*model.ParsedEdit) {
	var newest int64
	for rid := range revisions {
		if rid > newest {
			newest = rid
		}
	}
	if entity := revisions[newest]; entity != nil {
		if label, ok := entity.Label("en"); ok && label != "" {
			description, _ := entity.Description("en")
			e.resolver.Prime(qid, label, description)
		}
	}

	var ids []string
	for _, entity := range revisions {
		ids = append(ids, diff.CollectEntityIDs(entity.Claims)...)
	}
	for _, p := range parsed {
		if p == nil {
			continue
		}
		ids = append(ids, p.Property)
		if diff.IsItemID(p.ValueRaw) {
			ids = append(ids, p.ValueRaw)
		}
	}
	e.resolver.ResolveBatch(ctx, ids)
}

// sharedItemContext serializes the item at the group's newest revision
func (e *Enricher) sharedItemContext(ctx context.Context, group []*model.Edit, revisions map[int64]*wikidata.Entity, fetchErrs map[int64]string) *model.ItemContext {
	var newest int64
	for _, edit := range group {
		if edit.RevID > newest {
			newest = edit.RevID
		}
	}

	entity, ok := revisions[newest]
	if !ok {
		return &model.ItemContext{Error: revisionError(newest, fetchErrs)}
	}

	label, _ := entity.Label("en")
	description, _ := entity.Description("en")
	return &model.ItemContext{
		LabelEn:       label,
		DescriptionEn: description,
		Claims:        diff.SerializeClaims(ctx, entity.Claims, e.resolver),
	}
}

// enrichEdit attaches the parsed summary, item context, diff, and removed
// claim to one edit using the group's pre-fetched revisions.
func (e *Enricher) enrichEdit(ctx context.Context, edit *model.Edit, parsed *model.ParsedEdit, shared *model.ItemContext, revisions map[int64]*wikidata.Entity, fetchErrs map[int64]string) {
	if parsed != nil {
		parsed.PropertyLabel = e.resolver.Resolve(ctx, parsed.Property)
		if diff.IsItemID(parsed.ValueRaw) {
			parsed.ValueLabel = e.resolver.Resolve(ctx, parsed.ValueRaw)
			parsed.ValueDescription = e.resolver.ResolveDescription(ctx, parsed.ValueRaw)
		}
	}
	edit.ParsedEdit = parsed

	newEntity := revisions[edit.RevID]
	oldEntity := revisions[edit.OldRevID]

	if newEntity == nil {
		msg := revisionError(edit.RevID, fetchErrs)
		edit.Item = &model.ItemContext{Error: msg}
		edit.EditDiff = &model.EditDiff{Error: msg}
		return
	}

	edit.Item = shared

	if oldEntity != nil {
		edit.EditDiff = diff.ComputeEditDiff(ctx, oldEntity, newEntity, parsed, e.resolver)
	} else {
		// Item context was still built from the new revision
		edit.EditDiff = &model.EditDiff{Error: revisionError(edit.OldRevID, fetchErrs), Partial: true}
	}

	if parsed == nil || !diff.IsRemoveOperation(parsed.Operation) {
		return
	}
	if oldEntity == nil {
		edit.RemovedClaim = &model.Statement{Error: revisionError(edit.OldRevID, fetchErrs)}
		return
	}
	if removed := diff.FindRemovedClaims(oldEntity, newEntity, parsed.Property); len(removed) > 0 {
		edit.RemovedClaim = diff.SerializeStatement(ctx, removed[0], e.resolver)
	}
}

func revisionError(revid int64, fetchErrs map[int64]string) string {
	if msg, ok := fetchErrs[revid]; ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("revision %d unavailable", revid)
}
