package diff

import (
	"regexp"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
)

var (
	// editSummaryRE captures the wikibase operation, property, and
	// trailing value from a MediaWiki edit comment like
	// "/* wbsetclaim-update:2||1 */ [[Property:P106]]: [[Q117321337]]".
	editSummaryRE = regexp.MustCompile(`/\*\s*(wb[a-z]+(?:-[a-z]+)?)[^*]*\*/\s*\[\[Property:(P\d+)\]\](?::\s*(.+))?`)

	// qidInValueRE pulls a bare item ID out of a wikilinked value
	qidInValueRE = regexp.MustCompile(`\[\[(Q\d+)\]\]`)

	qidRE = regexp.MustCompile(`^Q\d+$`)
)

// ParseEditSummary extracts the structured operation from an edit
// comment. Returns nil when the comment does not match; that is not an
// error, plenty of edits touch things other than statements.
func ParseEditSummary(comment string) *model.ParsedEdit {
	m := editSummaryRE.FindStringSubmatch(comment)
	if m == nil {
		return nil
	}

	parsed := &model.ParsedEdit{
		Operation: m[1],
		Property:  m[2],
	}

	if m[3] != "" {
		value := strings.TrimSpace(m[3])
		if qm := qidInValueRE.FindStringSubmatch(value); qm != nil {
			value = qm[1]
		}
		parsed.ValueRaw = value
	}

	return parsed
}

// IsItemID reports whether raw is a bare item ID like "Q42"
func IsItemID(raw string) bool {
	return qidRE.MatchString(raw)
}

// operationKinds maps wikibase edit operations to diff classifications
var operationKinds = map[string]model.DiffType{
	"wbsetclaim-create":         model.DiffStatementAdded,
	"wbcreateclaim-create":      model.DiffStatementAdded,
	"wbremoveclaims-remove":     model.DiffStatementRemoved,
	"wbsetclaim-update":         model.DiffValueChanged,
	"wbsetclaimvalue":           model.DiffValueChanged,
	"wbsetreference-add":        model.DiffReferenceAdded,
	"wbsetreference-set":        model.DiffReferenceChanged,
	"wbremovereferences-remove": model.DiffReferenceRemoved,
	"wbsetqualifier-add":        model.DiffQualifierAdded,
	"wbsetqualifier-update":     model.DiffQualifierChanged,
	"wbremovequalifiers-remove": model.DiffQualifierRemoved,
}

// KindForOperation maps a parsed operation to its diff kind
func KindForOperation(operation string) model.DiffType {
	if kind, ok := operationKinds[operation]; ok {
		return kind
	}
	return model.DiffUnknown
}

// IsRemoveOperation reports whether the operation removes a statement
func IsRemoveOperation(operation string) bool {
	return strings.Contains(operation, "remove")
}
