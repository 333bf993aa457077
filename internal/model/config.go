package model

import "time"

// Config holds the full runtime configuration
type Config struct {
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Intake      IntakeConfig      `yaml:"intake" json:"intake"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// StorageConfig controls where complaint documents and indices live
type StorageConfig struct {
	// Dir is the data root; complaints go under Dir/complaints/YYYY/MM,
	// indices under Dir/indices.
	Dir string `yaml:"dir" json:"dir"`
}

// CacheConfig controls the in-memory record read cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// IntakeConfig controls the conversational intake collaborator
type IntakeConfig struct {
	MaxClarificationRounds int `yaml:"max_clarification_rounds" json:"max_clarification_rounds"`
	MaxFieldLength         int `yaml:"max_field_length" json:"max_field_length"`
}

// LLMConfig configures the optional triage-note annotator.
// The annotation is presentation-only and never affects classification.
type LLMConfig struct {
	Provider  string  `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model     string  `yaml:"model" json:"model"`
	APIKey    string  `yaml:"-" json:"-"` // From environment, never persisted
	BaseURL   string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   int     `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int     `yaml:"max_tokens" json:"max_tokens"`
	RatePerS  float64 `yaml:"rate_per_second" json:"rate_per_second"` // Batch-mode throttle
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`
}

// ConcurrencyConfig controls batch filing parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
	// Artifact directory for rendered JSON/Markdown copies of filed
	// complaints; empty disables artifact output.
	ArtifactDir string `yaml:"artifact_dir,omitempty" json:"artifact_dir,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir: "./complaint_data",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Intake: IntakeConfig{
			MaxClarificationRounds: 3,
			MaxFieldLength:         2000,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Model:     "",
			Timeout:   30,
			MaxTokens: 400,
			RatePerS:  1,
			RateBurst: 2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
