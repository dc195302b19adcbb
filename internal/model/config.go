package model

import "time"

// Config holds the full runtime configuration for vigil
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Wikidata  WikidataConfig  `yaml:"wikidata"`
	Search    SearchConfig    `yaml:"search"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Judges    JudgeConfig     `yaml:"judges"`
	Paths     PathsConfig     `yaml:"paths"`
	Output    OutputConfig    `yaml:"output"`
}

// HTTPConfig controls the shared HTTP client behavior
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`        // Per-request timeout
	UserAgent    string        `yaml:"user_agent"`     // Sent on every outbound request
	MaxBodyBytes int64         `yaml:"max_body_bytes"` // Response body cap
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
}

// CacheConfig controls revision JSON caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"` // Disk cache directory (default ~/.vigil/cache)
	TTL     time.Duration `yaml:"ttl"`           // Memory layer TTL; revisions are immutable so this only bounds memory
}

// RateLimitConfig is the per-domain outbound request budget
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// WikidataConfig points at the MediaWiki endpoints
type WikidataConfig struct {
	APIURL        string   `yaml:"api_url"`
	EntityDataURL string   `yaml:"entity_data_url"`
	Languages     []string `yaml:"languages"` // Label preference order; first entry is canonical
}

// SearchConfig controls the web_search tool backend (SearXNG)
type SearchConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"max_results"`
}

// FetchConfig controls the web_fetch tool
type FetchConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	MaxChars           int           `yaml:"max_chars"` // Extracted text cap before truncation
	MinDelay           time.Duration `yaml:"min_delay"` // Minimum spacing between fetches
	RespectRobots      bool          `yaml:"respect_robots"`
	BlockedDomainsFile string        `yaml:"blocked_domains_file,omitempty"`
}

// JudgeConfig controls the OpenRouter judge fan-out
type JudgeConfig struct {
	Models              []string       `yaml:"models"`
	BaseURL             string         `yaml:"base_url"`
	MaxTurns            int            `yaml:"max_turns"`       // Investigation loop bound
	UnitTimeout         time.Duration  `yaml:"unit_timeout"`    // Wall clock per (edit, judge) unit
	RequestTimeout      time.Duration  `yaml:"request_timeout"` // Per chat completion call
	MaxRetries          int            `yaml:"max_retries"`     // Transient HTTP retries
	ContextLimits       map[string]int `yaml:"context_limits,omitempty"`
	DefaultContextLimit int            `yaml:"default_context_limit"`
	PromptFile          string         `yaml:"prompt_file,omitempty"` // Overrides the built-in system prompt
}

// PathsConfig is where run artifacts land
type PathsConfig struct {
	SnapshotDir    string `yaml:"snapshot_dir"`
	VerdictDir     string `yaml:"verdict_dir"`
	CheckpointFile string `yaml:"checkpoint_file"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no file or flags override it
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Vigil/0.1 (+https://github.com/ppiankov/vigil)",
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2, // 0.5s spacing keeps Wikidata happy
			Burst:             1,
		},
		Wikidata: WikidataConfig{
			APIURL:        "https://www.wikidata.org/w/api.php",
			EntityDataURL: "https://www.wikidata.org/wiki/Special:EntityData",
			Languages:     []string{"en", "de", "fr", "es"},
		},
		Search: SearchConfig{
			URL:        "http://localhost:8080/search",
			Timeout:    10 * time.Second,
			MaxResults: 10,
		},
		Fetch: FetchConfig{
			Timeout:       15 * time.Second,
			MaxChars:      15000,
			MinDelay:      500 * time.Millisecond,
			RespectRobots: true,
		},
		Judges: JudgeConfig{
			Models: []string{
				"nvidia/nemotron-3-nano-30b-a3b",
				"allenai/olmo-3.1-32b-instruct",
				"deepseek/deepseek-v3.2",
				"anthropic/claude-4.5-haiku-20251001",
			},
			BaseURL:        "https://openrouter.ai/api/v1",
			MaxTurns:       15,
			UnitTimeout:    180 * time.Second,
			RequestTimeout: 120 * time.Second,
			MaxRetries:     3,
			ContextLimits: map[string]int{
				"nvidia/nemotron-3-nano-30b-a3b":      262000,
				"allenai/olmo-3.1-32b-instruct":       65000,
				"deepseek/deepseek-v3.2":              164000,
				"anthropic/claude-4.5-haiku-20251001": 200000,
			},
			DefaultContextLimit: 100000,
		},
		Paths: PathsConfig{
			SnapshotDir:    "snapshots",
			VerdictDir:     "verdicts",
			CheckpointFile: "checkpoint.yaml",
		},
	}
}
