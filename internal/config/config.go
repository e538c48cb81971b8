// Package config loads the distill configuration file and the credential
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Summarize  SummarizeConfig  `yaml:"summarize"`
	Output     OutputConfig     `yaml:"output"`
	Slack      SlackConfig      `yaml:"slack"`

	Credentials Credentials `yaml:"-"`
}

type StorageConfig struct {
	Bucket         string `yaml:"bucket"`
	KeyPrefix      string `yaml:"key_prefix"`
	DeleteAfterRun bool   `yaml:"delete_after_run"`
}

type TranscribeConfig struct {
	ProjectID           string `yaml:"project_id"`
	Location            string `yaml:"location"`
	Model               string `yaml:"model"`
	Language            string `yaml:"language"`
	OutputPrefix        string `yaml:"output_prefix"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	TimeoutMinutes      int    `yaml:"timeout_minutes"`
	TransportRetries    int    `yaml:"transport_retries"`
}

type SummarizeConfig struct {
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	MaxInputChars   int     `yaml:"max_input_chars"`
	PromptTemplate  string  `yaml:"prompt_template"`
}

type OutputConfig struct {
	Type     string `yaml:"type"`
	Filename string `yaml:"filename"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// Credentials come from the environment, never from the config file.
type Credentials struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	ProjectID    string `env:"GOOGLE_CLOUD_PROJECT"`
}

// Load reads the YAML config at path, applies environment credentials, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := env.Parse(&cfg.Credentials); err != nil {
		return nil, fmt.Errorf("read credential environment: %w", err)
	}
	if cfg.Transcribe.ProjectID == "" {
		cfg.Transcribe.ProjectID = cfg.Credentials.ProjectID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and fills in defaults.
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Transcribe.ProjectID == "" {
		return fmt.Errorf("transcribe.project_id is required (or set GOOGLE_CLOUD_PROJECT)")
	}

	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "uploads"
	}
	if c.Transcribe.Location == "" {
		c.Transcribe.Location = "global"
	}
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = "latest_long"
	}
	if c.Transcribe.Language == "" {
		c.Transcribe.Language = "en-US"
	}
	if c.Transcribe.OutputPrefix == "" {
		c.Transcribe.OutputPrefix = "transcripts"
	}
	if c.Transcribe.PollIntervalSeconds <= 0 {
		c.Transcribe.PollIntervalSeconds = 5
	}
	if c.Transcribe.TimeoutMinutes <= 0 {
		c.Transcribe.TimeoutMinutes = 60
	}
	if c.Transcribe.TransportRetries <= 0 {
		c.Transcribe.TransportRetries = 3
	}
	if c.Summarize.Model == "" {
		c.Summarize.Model = "gemini-2.5-flash"
	}
	if c.Summarize.Temperature < 0 || c.Summarize.Temperature > 2 {
		return fmt.Errorf("summarize.temperature must be between 0 and 2, got %v", c.Summarize.Temperature)
	}
	if c.Summarize.MaxOutputTokens <= 0 {
		c.Summarize.MaxOutputTokens = 2048
	}
	if c.Summarize.MaxInputChars <= 0 {
		c.Summarize.MaxInputChars = 200_000
	}

	return nil
}

// PollInterval returns the transcription poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Transcribe.PollIntervalSeconds) * time.Second
}

// PollTimeout returns the wall-clock bound on waiting for a transcription job.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Transcribe.TimeoutMinutes) * time.Minute
}
