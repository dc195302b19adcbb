package diff

import (
	"testing"

	"github.com/ppiankov/vigil/internal/model"
)

func TestParseEditSummary_Update(t *testing.T) {
	comment := "/* wbsetclaim-update:2||1 */ [[Property:P106]]: [[Q117321337]]"

	parsed := ParseEditSummary(comment)
	if parsed == nil {
		t.Fatal("expected parsed edit, got nil")
	}
	if parsed.Operation != "wbsetclaim-update" {
		t.Errorf("expected operation wbsetclaim-update, got %q", parsed.Operation)
	}
	if parsed.Property != "P106" {
		t.Errorf("expected property P106, got %q", parsed.Property)
	}
	if parsed.ValueRaw != "Q117321337" {
		t.Errorf("expected value Q117321337, got %q", parsed.ValueRaw)
	}
}

func TestParseEditSummary_Create(t *testing.T) {
	comment := "/* wbcreateclaim-create:1| */ [[Property:P31]]: [[Q5]]"

	parsed := ParseEditSummary(comment)
	if parsed == nil {
		t.Fatal("expected parsed edit, got nil")
	}
	if parsed.Operation != "wbcreateclaim-create" {
		t.Errorf("expected operation wbcreateclaim-create, got %q", parsed.Operation)
	}
	if parsed.ValueRaw != "Q5" {
		t.Errorf("expected value Q5, got %q", parsed.ValueRaw)
	}
}

func TestParseEditSummary_NoValue(t *testing.T) {
	comment := "/* wbremoveclaims-remove:1| */ [[Property:P569]]"

	parsed := ParseEditSummary(comment)
	if parsed == nil {
		t.Fatal("expected parsed edit, got nil")
	}
	if parsed.Operation != "wbremoveclaims-remove" {
		t.Errorf("expected operation wbremoveclaims-remove, got %q", parsed.Operation)
	}
	if parsed.Property != "P569" {
		t.Errorf("expected property P569, got %q", parsed.Property)
	}
	if parsed.ValueRaw != "" {
		t.Errorf("expected empty value, got %q", parsed.ValueRaw)
	}
}

func TestParseEditSummary_PlainTextValue(t *testing.T) {
	comment := "/* wbsetclaim-update:2||1 */ [[Property:P1476]]: some plain title"

	parsed := ParseEditSummary(comment)
	if parsed == nil {
		t.Fatal("expected parsed edit, got nil")
	}
	if parsed.ValueRaw != "some plain title" {
		t.Errorf("expected raw text value, got %q", parsed.ValueRaw)
	}
}

func TestParseEditSummary_Unparseable(t *testing.T) {
	comments := []string{
		"",
		"Undo revision 123456789",
		"/* clientsitelink-update:0| */ added link",
		"reverted vandalism",
	}

	for _, comment := range comments {
		if parsed := ParseEditSummary(comment); parsed != nil {
			t.Errorf("expected nil for %q, got %+v", comment, parsed)
		}
	}
}

func TestKindForOperation(t *testing.T) {
	cases := []struct {
		operation string
		want      model.DiffType
	}{
		{"wbsetclaim-create", model.DiffStatementAdded},
		{"wbcreateclaim-create", model.DiffStatementAdded},
		{"wbremoveclaims-remove", model.DiffStatementRemoved},
		{"wbsetclaim-update", model.DiffValueChanged},
		{"wbsetclaimvalue", model.DiffValueChanged},
		{"wbsetreference-add", model.DiffReferenceAdded},
		{"wbsetreference-set", model.DiffReferenceChanged},
		{"wbremovereferences-remove", model.DiffReferenceRemoved},
		{"wbsetqualifier-add", model.DiffQualifierAdded},
		{"wbsetqualifier-update", model.DiffQualifierChanged},
		{"wbremovequalifiers-remove", model.DiffQualifierRemoved},
		{"wbmergeitems-from", model.DiffUnknown},
		{"", model.DiffUnknown},
	}

	for _, tc := range cases {
		if got := KindForOperation(tc.operation); got != tc.want {
			t.Errorf("KindForOperation(%q) = %q, want %q", tc.operation, got, tc.want)
		}
	}
}

func TestIsItemID(t *testing.T) {
	if !IsItemID("Q42") {
		t.Error("Q42 should be an item ID")
	}
	if IsItemID("P31") {
		t.Error("P31 is a property, not an item")
	}
	if IsItemID("Q42 and more") {
		t.Error("trailing text should not match")
	}
	if IsItemID("") {
		t.Error("empty string should not match")
	}
}

func TestIsRemoveOperation(t *testing.T) {
	if !IsRemoveOperation("wbremoveclaims-remove") {
		t.Error("wbremoveclaims-remove is a removal")
	}
	if IsRemoveOperation("wbsetclaim-update") {
		t.Error("wbsetclaim-update is not a removal")
	}
}
