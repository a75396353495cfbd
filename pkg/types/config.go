package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "nerdswipe/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ReaderConfig holds settings for reading record dumps.
type ReaderConfig struct {
	// DataDir is the directory that holds the JSONL output files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// OutputFiles lists the dump file names, relative to DataDir. A file is
	// read for a record type only if its name contains that type.
	OutputFiles []string `json:"output_files" yaml:"output_files" mapstructure:"output_files"`

	// RecordTypes selects which record types are read.
	RecordTypes []RecordType `json:"record_types" yaml:"record_types" mapstructure:"record_types"`
}

// StoreConfig holds settings for the SQLite knowledge base.
type StoreConfig struct {
	// DataDir is the base directory; the database lives in DataDir/index/.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// AntiRecommenderType selects the anti-recommendation backend.
type AntiRecommenderType string

const (
	AntiRecommenderOpenAI AntiRecommenderType = "openai"
	AntiRecommenderARKG   AntiRecommenderType = "arkg"
)

// AIConfig holds shared settings for components that call a large language model API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the OpenAI-compatible API root (default https://api.openai.com/v1).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerMinute caps the request rate. Zero disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RecommenderConfig holds settings for the anti-recommender.
type RecommenderConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Type selects the backend: openai or arkg.
	Type AntiRecommenderType `json:"type" yaml:"type" mapstructure:"type"`

	// GraphFile is the anti-recommendation graph used by the arkg backend.
	GraphFile string `json:"graph_file" yaml:"graph_file" mapstructure:"graph_file"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default 127.0.0.1:8080).
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Reader      ReaderConfig      `json:"reader" yaml:"reader" mapstructure:"reader"`
	Store       StoreConfig       `json:"store" yaml:"store" mapstructure:"store"`
	Recommender RecommenderConfig `json:"recommender" yaml:"recommender" mapstructure:"recommender"`
	Server      ServerConfig      `json:"server" yaml:"server" mapstructure:"server"`
}
