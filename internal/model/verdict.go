package model

// Verdict is a judge's conclusion about an edit
type Verdict string

const (
	VerdictVerifiedHigh Verdict = "verified-high" // Confirmed by an independent source the judge fetched
	VerdictVerifiedLow  Verdict = "verified-low"  // Supported, but only by weak or derivative sources
	VerdictPlausible    Verdict = "plausible"     // Consistent with what was found, not confirmed
	VerdictUnverifiable Verdict = "unverifiable"  // No usable sources found either way
	VerdictSuspect      Verdict = "suspect"       // Contradicting signals, not conclusive
	VerdictIncorrect    Verdict = "incorrect"     // Contradicted by a source the judge fetched
)

// Source is one URL a judge cited for its verdict
type Source struct {
	URL           string `json:"url" yaml:"url"`
	SupportsClaim bool   `json:"supports_claim" yaml:"supports_claim"`
	Provenance    string `json:"provenance" yaml:"provenance"` // "verified" (fetched) or "reported" (from search snippet)
}

// VerdictData is the JSON object a judge must return in the verdict phase
type VerdictData struct {
	Verdict   string   `json:"verdict" yaml:"verdict"`
	Rationale string   `json:"rationale" yaml:"rationale"`
	Sources   []Source `json:"sources" yaml:"sources"`
}

// VerdictRecord is the persisted result of one (edit, judge) unit.
// Verdict and Rationale are pointers so a missing verdict round-trips
// as an explicit null rather than an empty string.
type VerdictRecord struct {
	Timestamp        string   `yaml:"timestamp"`
	Model            string   `yaml:"model"`
	RCID             int64    `yaml:"rcid"`
	RevID            int64    `yaml:"revid"`
	Title            string   `yaml:"title"`
	Property         string   `yaml:"property,omitempty"`
	PropertyLabel    string   `yaml:"property_label,omitempty"`
	ValueLabel       string   `yaml:"value_label,omitempty"`
	DiffType         string   `yaml:"diff_type,omitempty"`
	FinishStatus     string   `yaml:"finish_status,omitempty"`
	Turns            int      `yaml:"turns,omitempty"`
	PromptTokens     int      `yaml:"prompt_tokens,omitempty"`
	CompletionTokens int      `yaml:"completion_tokens,omitempty"`
	CostUSD          *float64 `yaml:"cost_usd,omitempty"`
	Timeout          bool     `yaml:"timeout,omitempty"`

	Verdict   *string  `yaml:"verdict"`
	Rationale *string  `yaml:"rationale"`
	Sources   []Source `yaml:"sources"`
}
