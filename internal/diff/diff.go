package diff

import (
	"context"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/wikidata"
)

// ComputeEditDiff compares the old and new revisions for the edited
// property and classifies what changed. Returns nil when there is no
// parsed edit to anchor the comparison.
//
// When several statements of the property changed in one edit, an
// arbitrary one is reported; the upstream data defines no ordering.
func ComputeEditDiff(ctx context.Context, oldEntity, newEntity *wikidata.Entity, parsed *model.ParsedEdit, r Resolver) *model.EditDiff {
	if parsed == nil {
		return nil
	}

	prop := parsed.Property
	kind := KindForOperation(parsed.Operation)

	oldByID := claimsByID(oldEntity, prop)
	newByID := claimsByID(newEntity, prop)

	var oldValue, newValue *model.Statement

	switch kind {
	case model.DiffStatementAdded:
		for id, claim := range newByID {
			if _, ok := oldByID[id]; !ok {
				newValue = SerializeStatement(ctx, claim, r)
				break
			}
		}
	case model.DiffStatementRemoved:
		for id, claim := range oldByID {
			if _, ok := newByID[id]; !ok {
				oldValue = SerializeStatement(ctx, claim, r)
				break
			}
		}
	default:
		// Updates and reference/qualifier operations modify an existing
		// statement, so look for a shared statement ID first
		matched := false
		for id, oldClaim := range oldByID {
			if newClaim, ok := newByID[id]; ok {
				oldValue = SerializeStatement(ctx, oldClaim, r)
				newValue = SerializeStatement(ctx, newClaim, r)
				matched = true
				break
			}
		}
		if !matched {
			// No shared IDs: show the new state
			for _, claim := range newByID {
				newValue = SerializeStatement(ctx, claim, r)
				break
			}
		}
	}

	// wbsetclaim-update fires for any change to an existing claim, so
	// refine by comparing the two serialized sides
	if kind == model.DiffValueChanged && oldValue != nil && newValue != nil {
		kind = refineDiffType(oldValue, newValue)
	}

	return &model.EditDiff{
		Type:          kind,
		Property:      prop,
		PropertyLabel: r.Resolve(ctx, prop),
		OldValue:      oldValue,
		NewValue:      newValue,
	}
}

// refineDiffType distinguishes value changes from reference, qualifier,
// and rank-only changes. Priority: a value change wins outright; a
// single-field change classifies by that field; anything compound keeps
// the generic classification.
func refineDiffType(oldStmt, newStmt *model.Statement) model.DiffType {
	valueChanged := oldStmt.Value != newStmt.Value
	rankChanged := oldStmt.Rank != newStmt.Rank
	refsChanged := !refsEqual(oldStmt.References, newStmt.References)
	qualsChanged := !qualsEqual(oldStmt.Qualifiers, newStmt.Qualifiers)

	if valueChanged {
		return model.DiffValueChanged
	}

	if refsChanged && !qualsChanged && !rankChanged {
		if len(oldStmt.References) == 0 && len(newStmt.References) > 0 {
			return model.DiffReferenceAdded
		}
		if len(oldStmt.References) > 0 && len(newStmt.References) == 0 {
			return model.DiffReferenceRemoved
		}
		return model.DiffReferenceChanged
	}

	if qualsChanged && !refsChanged && !rankChanged {
		if len(oldStmt.Qualifiers) == 0 && len(newStmt.Qualifiers) > 0 {
			return model.DiffQualifierAdded
		}
		if len(oldStmt.Qualifiers) > 0 && len(newStmt.Qualifiers) == 0 {
			return model.DiffQualifierRemoved
		}
		return model.DiffQualifierChanged
	}

	if rankChanged && !refsChanged && !qualsChanged {
		return model.DiffRankChanged
	}

	// Multiple fields changed at once: keep the generic classification
	return model.DiffValueChanged
}

// refsEqual compares reference lists structurally, order-sensitive
func refsEqual(a, b []model.Reference) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for pid, detail := range a[i] {
			other, ok := b[i][pid]
			if !ok || other != detail {
				return false
			}
		}
	}
	return true
}

// qualsEqual compares qualifier maps structurally
func qualsEqual(a, b map[string]model.SnakDetail) bool {
	if len(a) != len(b) {
		return false
	}
	for pid, detail := range a {
		other, ok := b[pid]
		if !ok || other != detail {
			return false
		}
	}
	return true
}

// FindRemovedClaims returns the claims of the property whose IDs are
// present in the old revision and absent from the new one. A property
// missing entirely from the new revision means all of its old claims
// were removed.
func FindRemovedClaims(oldEntity, newEntity *wikidata.Entity, property string) []wikidata.Claim {
	var oldClaims, newClaims []wikidata.Claim
	if oldEntity != nil {
		oldClaims = oldEntity.Claims[property]
	}
	if newEntity != nil {
		newClaims = newEntity.Claims[property]
	}

	newIDs := make(map[string]bool, len(newClaims))
	for _, c := range newClaims {
		newIDs[c.ID] = true
	}

	var removed []wikidata.Claim
	for _, c := range oldClaims {
		if !newIDs[c.ID] {
			removed = append(removed, c)
		}
	}
	return removed
}

// claimsByID indexes an entity's claims for one property by statement ID
func claimsByID(e *wikidata.Entity, property string) map[string]wikidata.Claim {
	out := make(map[string]wikidata.Claim)
	if e == nil {
		return out
	}
	for _, c := range e.Claims[property] {
		out[c.ID] = c
	}
	return out
}
