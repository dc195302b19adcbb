package pipeline

import "github.com/ppiankov/vigil/internal/model"

// GroupEdits partitions edits into runs of consecutive edits sharing
// (title, user). Sequential edits by the same user on the same item share
// revision fetches during enrichment. The partition is stable:
// concatenating the groups in order reproduces the input order.
//
// Every edit is annotated with its 1-based group ID, 1-based position
// inside the group, and the group size.
func GroupEdits(edits []*model.Edit) [][]*model.Edit {
	if len(edits) == 0 {
		return nil
	}

	var groups [][]*model.Edit
	current := []*model.Edit{edits[0]}

	for _, edit := range edits[1:] {
		last := current[len(current)-1]
		if edit.Title == last.Title && edit.User == last.User {
			current = append(current, edit)
			continue
		}
		groups = append(groups, current)
		current = []*model.Edit{edit}
	}
	groups = append(groups, current)

	for gi, group := range groups {
		for si, edit := range group {
			edit.GroupID = gi + 1
			edit.GroupSeq = si + 1
			edit.GroupSize = len(group)
		}
	}

	return groups
}
