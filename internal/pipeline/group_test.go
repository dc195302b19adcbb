package pipeline

import (
	"testing"

	"github.com/ppiankov/vigil/internal/model"
)

func edit(title, user string) *model.Edit {
	return &model.Edit{Title: title, User: user}
}

func TestGroupEdits_ConsecutiveRuns(t *testing.T) {
	edits := []*model.Edit{
		edit("Q1", "alice"),
		edit("Q1", "alice"),
		edit("Q2", "alice"),
		edit("Q1", "alice"), // same pair as the first run, but not consecutive
	}

	groups := GroupEdits(edits)
	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 || len(groups[2]) != 1 {
		t.Errorf("Unexpected group sizes: %d, %d, %d", len(groups[0]), len(groups[1]), len(groups[2]))
	}
}

func TestGroupEdits_SameTitleDifferentUser(t *testing.T) {
	edits := []*model.Edit{
		edit("Q1", "alice"),
		edit("Q1", "bob"),
	}

	groups := GroupEdits(edits)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
}

func TestGroupEdits_Annotations(t *testing.T) {
	edits := []*model.Edit{
		edit("Q1", "alice"),
		edit("Q1", "alice"),
		edit("Q2", "bob"),
	}

	GroupEdits(edits)

	want := []struct{ id, seq, size int }{
		{1, 1, 2},
		{1, 2, 2},
		{2, 1, 1},
	}
	for i, w := range want {
		e := edits[i]
		if e.GroupID != w.id || e.GroupSeq != w.seq || e.GroupSize != w.size {
			t.Errorf("edit %d: got group %d/%d/%d, want %d/%d/%d",
				i, e.GroupID, e.GroupSeq, e.GroupSize, w.id, w.seq, w.size)
		}
	}
}

func TestGroupEdits_StablePartition(t *testing.T) {
	edits := []*model.Edit{
		edit("Q1", "alice"),
		edit("Q2", "alice"),
		edit("Q2", "alice"),
		edit("Q3", "carol"),
	}

	var flattened []*model.Edit
	for _, group := range GroupEdits(edits) {
		flattened = append(flattened, group...)
	}

	if len(flattened) != len(edits) {
		t.Fatalf("Expected %d edits after flattening, got %d", len(edits), len(flattened))
	}
	for i := range edits {
		if flattened[i] != edits[i] {
			t.Errorf("edit %d out of order after grouping", i)
		}
	}
}

func TestGroupEdits_Empty(t *testing.T) {
	if groups := GroupEdits(nil); groups != nil {
		t.Errorf("Expected no groups for empty input, got %d", len(groups))
	}
}
