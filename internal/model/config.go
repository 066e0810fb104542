package model

import "time"

// Config is the complete runtime configuration. Every field has a
// default; a config file or MATZPEN_* environment variables override
// selectively.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Store      StoreConfig      `yaml:"store"`
	Cache      CacheConfig      `yaml:"cache"`
	LLM        LLMConfig        `yaml:"llm"`
	Output     OutputConfig     `yaml:"output"`
}

// ExtractionConfig carries the pattern cascade. An empty Rules list
// means the built-in cascade; overriding lets corpora with different
// anchor conventions supply their own rules without a code change.
type ExtractionConfig struct {
	Rules   []RuleConfig `yaml:"rules,omitempty"`
	Workers int          `yaml:"workers"` // parallelism of the per-record pass; results stay input-ordered
}

// RuleConfig is one cascade rule in priority order. Regex must contain
// exactly one capture group for the 6-digit token.
type RuleConfig struct {
	ID    string `yaml:"id"`
	Regex string `yaml:"regex"`
}

// ScoringConfig lets the hand-tuned heuristic weights be adjusted per
// corpus. A zero weight disables the heuristic; omitted tags keep the
// built-in weight.
type ScoringConfig struct {
	Weights map[string]int `yaml:"weights,omitempty"`
}

// SamplingConfig sets the review-sample composition.
type SamplingConfig struct {
	Positive int   `yaml:"positive"`
	Negative int   `yaml:"negative"`
	Edge     int   `yaml:"edge"`
	// Negative sub-bucket quotas, drawn in this order.
	NoNumbers      int   `yaml:"no_numbers"`
	NonSixDigit    int   `yaml:"non_six_digit"`
	MissedSixDigit int   `yaml:"missed_six_digit"`
	Seed           int64 `yaml:"seed"`
}

// StoreConfig locates the evaluation run-history database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls the LLM response cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// LLMConfig configures optional observation generation. Observations
// are commentary on already-computed metrics and never feed back into
// them.
type LLMConfig struct {
	Provider          string        `yaml:"provider"` // "openai" or "" for disabled
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"-"` // environment only, never written to config files
	BaseURL           string        `yaml:"base_url,omitempty"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute float64       `yaml:"requests_per_minute"`
}

// OutputConfig controls console and report output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults, matching the tuning the
// heuristics were calibrated with.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Workers: 1,
		},
		Sampling: SamplingConfig{
			Positive:       40,
			Negative:       40,
			Edge:           20,
			NoNumbers:      15,
			NonSixDigit:    15,
			MissedSixDigit: 10,
			Seed:           42,
		},
		Store: StoreConfig{
			Path: "matzpen.db",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".matzpen-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			MaxTokens:         800,
			Timeout:           30 * time.Second,
			RequestsPerMinute: 20,
		},
	}
}
