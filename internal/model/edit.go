package model

// DiffType classifies what a statement edit changed
type DiffType string

const (
	DiffStatementAdded   DiffType = "statement_added"
	DiffStatementRemoved DiffType = "statement_removed"
	DiffValueChanged     DiffType = "value_changed"
	DiffReferenceAdded   DiffType = "reference_added"
	DiffReferenceChanged DiffType = "reference_changed"
	DiffReferenceRemoved DiffType = "reference_removed"
	DiffQualifierAdded   DiffType = "qualifier_added"
	DiffQualifierChanged DiffType = "qualifier_changed"
	DiffQualifierRemoved DiffType = "qualifier_removed"
	DiffRankChanged      DiffType = "rank_changed"
	DiffUnknown          DiffType = "unknown"
)

// Edit is one recent change to a Wikidata item, as listed by the
// recentchanges API and later enriched with revision-diff context.
type Edit struct {
	RCID      int64    `yaml:"rcid"`
	RevID     int64    `yaml:"revid"`
	OldRevID  int64    `yaml:"old_revid"`
	Title     string   `yaml:"title"` // Item QID (namespace 0)
	User      string   `yaml:"user"`
	Timestamp string   `yaml:"timestamp"`
	Comment   string   `yaml:"comment"`
	Tags      []string `yaml:"tags"`

	// Grouping annotations, 1-based. Zero means ungrouped.
	GroupID   int `yaml:"group_id,omitempty"`
	GroupSeq  int `yaml:"group_seq,omitempty"`
	GroupSize int `yaml:"group_size,omitempty"`

	// Enrichment results. Nil until enrichment runs; each degrades
	// independently when a revision fetch or diff fails.
	ParsedEdit   *ParsedEdit  `yaml:"parsed_edit,omitempty"`
	Item         *ItemContext `yaml:"item,omitempty"`
	EditDiff     *EditDiff    `yaml:"edit_diff,omitempty"`
	RemovedClaim *Statement   `yaml:"removed_claim,omitempty"`
}

// ParsedEdit is the structured form of a MediaWiki edit summary like
// "/* wbsetclaim-update:2||1 */ [[Property:P106]]: [[Q117321337]]".
type ParsedEdit struct {
	Operation        string `yaml:"operation"`
	Property         string `yaml:"property"`
	ValueRaw         string `yaml:"value_raw,omitempty"`
	PropertyLabel    string `yaml:"property_label,omitempty"`
	ValueLabel       string `yaml:"value_label,omitempty"`
	ValueDescription string `yaml:"value_description,omitempty"`
}

// SnakDetail is the rendered form of a single qualifier or reference snak
type SnakDetail struct {
	PropertyLabel string `yaml:"property_label"`
	Value         string `yaml:"value"`
	ValueLabel    string `yaml:"value_label,omitempty"`
}

// Reference is one reference block, first snak per property
type Reference map[string]SnakDetail

// Statement is a serialized Wikidata statement. Error is set instead of
// the value fields when the statement could not be reconstructed.
type Statement struct {
	Value      string                `yaml:"value,omitempty"`
	ValueLabel string                `yaml:"value_label,omitempty"`
	Rank       string                `yaml:"rank,omitempty"`
	References []Reference           `yaml:"references"`
	Qualifiers map[string]SnakDetail `yaml:"qualifiers"`
	Error      string                `yaml:"error,omitempty"`
}

// PropertyClaims groups the serialized statements of one property
type PropertyClaims struct {
	PropertyLabel string      `yaml:"property_label"`
	Statements    []Statement `yaml:"statements"`
}

// ItemContext is the human-readable view of the edited item at its
// newest revision in a group. Error is set when the revision fetch failed.
type ItemContext struct {
	LabelEn       string                    `yaml:"label_en,omitempty"`
	DescriptionEn string                    `yaml:"description_en,omitempty"`
	Claims        map[string]PropertyClaims `yaml:"claims,omitempty"`
	Error         string                    `yaml:"error,omitempty"`
}

// EditDiff is the reconstructed change between two revisions for the
// edited property. Error and Partial report diff failures: Partial means
// the surrounding item context was still built.
type EditDiff struct {
	Type          DiffType   `yaml:"type,omitempty"`
	Property      string     `yaml:"property,omitempty"`
	PropertyLabel string     `yaml:"property_label,omitempty"`
	OldValue      *Statement `yaml:"old_value,omitempty"`
	NewValue      *Statement `yaml:"new_value,omitempty"`
	Error         string     `yaml:"error,omitempty"`
	Partial       bool       `yaml:"partial,omitempty"`
}

// Snapshot is one fetched batch of edits as persisted to disk
type Snapshot struct {
	FetchDate string  `yaml:"fetch_date"`
	Label     string  `yaml:"label"`
	Count     int     `yaml:"count"`
	Edits     []*Edit `yaml:"edits"`
}
