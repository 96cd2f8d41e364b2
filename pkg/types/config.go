// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CollectorConfig holds settings for the collection stage.
type CollectorConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Sources lists the enabled collectors: "arxiv", "chemrxiv".
	Sources []string `json:"sources" yaml:"sources" mapstructure:"sources"`

	// Categories restricts arXiv results (e.g. "cs.AI").
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// Keywords are search terms; ChemRxiv requires at least one.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// WindowDays is how far back from now submissions are accepted (default 1).
	WindowDays int `json:"window_days" yaml:"window_days" mapstructure:"window_days"`

	// MaxResults caps the number of results requested per source (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// RequestDelay is the pause after each source request (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`
}

// ScoreWeights are the fixed weights of the four sub-scores. They must sum to 1.0.
type ScoreWeights struct {
	Author   float64 `json:"author" yaml:"author" mapstructure:"author"`
	Category float64 `json:"category" yaml:"category" mapstructure:"category"`
	Content  float64 `json:"content" yaml:"content" mapstructure:"content"`
	Recency  float64 `json:"recency" yaml:"recency" mapstructure:"recency"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.Author + w.Category + w.Content + w.Recency
}

// ScoringConfig holds settings for scoring and ranking.
type ScoringConfig struct {
	Weights ScoreWeights `json:"weights" yaml:"weights" mapstructure:"weights"`

	// RecencyHorizonDays is the age at which the recency sub-score reaches zero (default 200).
	RecencyHorizonDays int `json:"recency_horizon_days" yaml:"recency_horizon_days" mapstructure:"recency_horizon_days"`

	// TopK is the number of papers kept after ranking (default 10).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`
}

// AIConfig holds shared settings for calls to the text-generation API.
type AIConfig struct {
	// Model is the chat model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the bearer token for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the OpenAI-compatible API root (e.g. "https://api.deepseek.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout is the HTTP request timeout for one API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// AnalyzerConfig holds settings for the analysis stage.
type AnalyzerConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// ReasoningModel is used for classification and summary (default "deepseek-reasoner").
	ReasoningModel string `json:"reasoning_model" yaml:"reasoning_model" mapstructure:"reasoning_model"`

	// CacheDir holds one JSON file per analyzed paper.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// RequestDelay is the pause after each text-generation call.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// PromptsFile optionally overrides the built-in prompts.
	PromptsFile string `json:"prompts_file,omitempty" yaml:"prompts_file,omitempty" mapstructure:"prompts_file"`
}

// ReportConfig holds settings for report output.
type ReportConfig struct {
	// OutputDir receives CSV, HTML, and analysis JSON files.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Host       string   `json:"host" yaml:"host" mapstructure:"host"`
	Port       int      `json:"port" yaml:"port" mapstructure:"port"`
	Username   string   `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password   string   `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	From       string   `json:"from,omitempty" yaml:"from,omitempty" mapstructure:"from"`
	Recipients []string `json:"recipients" yaml:"recipients" mapstructure:"recipients"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`

	// SkipReported drops papers that appeared in an earlier report.
	SkipReported bool `json:"skip_reported" yaml:"skip_reported" mapstructure:"skip_reported"`
}

// ScheduleConfig holds settings for the daily serve loop.
type ScheduleConfig struct {
	// Time is the daily run time in HH:MM.
	Time     string `json:"time" yaml:"time" mapstructure:"time"`
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	File   string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// PipelineConfig groups all stage configurations. It is built once at
// startup and passed down by value.
type PipelineConfig struct {
	Collector CollectorConfig `json:"collector" yaml:"collector" mapstructure:"collector"`
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Analyzer  AnalyzerConfig  `json:"analyzer" yaml:"analyzer" mapstructure:"analyzer"`
	Report    ReportConfig    `json:"report" yaml:"report" mapstructure:"report"`
	Email     EmailConfig     `json:"email" yaml:"email" mapstructure:"email"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Schedule  ScheduleConfig  `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultPipelineConfig returns the configuration used when no file,
// environment variable, or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Collector: CollectorConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "daily-scholar/0.1",
			},
			Sources:      []string{SourceArxiv},
			Categories:   []string{"cs.AI"},
			WindowDays:   1,
			MaxResults:   100,
			RequestDelay: time.Second,
		},
		Scoring: ScoringConfig{
			Weights: ScoreWeights{
				Author:   0.3,
				Category: 0.3,
				Content:  0.2,
				Recency:  0.2,
			},
			RecencyHorizonDays: 200,
			TopK:               10,
		},
		Analyzer: AnalyzerConfig{
			AIConfig: AIConfig{
				Model:       "deepseek-chat",
				BaseURL:     "https://api.deepseek.com/v1",
				MaxRetries:  3,
				Temperature: 0.7,
				MaxTokens:   2000,
				Timeout:     2 * time.Minute,
			},
			ReasoningModel: "deepseek-reasoner",
			CacheDir:       "data/cache",
			RequestDelay:   time.Second,
		},
		Report: ReportConfig{
			OutputDir: "data/reports",
		},
		Email: EmailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		History: HistoryConfig{
			Path: "data/history/daily_scholar.db",
		},
		Schedule: ScheduleConfig{
			Time:     "09:00",
			Timezone: "Asia/Seoul",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
