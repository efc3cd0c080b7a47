package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-fetcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the PubMed E-utilities client.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL overrides the E-utilities endpoint root.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxResults is the esearch retmax (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// APIKey is an optional NCBI API key; it raises the request ceiling
	// from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Tool and Email identify the caller to NCBI as its usage policy asks.
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// RequestsPerSecond overrides the pacing derived from APIKey when > 0.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" mapstructure:"requests_per_second"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the chat model identifier (e.g. "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint, for proxies and compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Disabled skips all LLM calls; enhancement and summaries fall back.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// AffiliationConfig holds the keyword set for the non-academic heuristic.
type AffiliationConfig struct {
	AcademicKeywords []string `json:"academic_keywords" yaml:"academic_keywords" mapstructure:"academic_keywords"`
}

// OutputFormat selects the console rendering.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// OutputConfig holds settings for result emission.
type OutputConfig struct {
	// File, when set, receives CSV output instead of the console.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// ArchiveConfig holds settings for the optional run archive.
type ArchiveConfig struct {
	// Path is the SQLite database file; empty disables archiving.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// Config groups all stage configurations.
type Config struct {
	PubMed      FetchConfig       `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	LLM         AIConfig          `json:"llm" yaml:"llm" mapstructure:"llm"`
	Affiliation AffiliationConfig `json:"affiliation" yaml:"affiliation" mapstructure:"affiliation"`
	Output      OutputConfig      `json:"output" yaml:"output" mapstructure:"output"`
	Archive     ArchiveConfig     `json:"archive" yaml:"archive" mapstructure:"archive"`
}
