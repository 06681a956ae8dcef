// Package config loads service configuration from config.yml, .env files,
// and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/callinsight/logger"
)

// Config is the root configuration for the service.
type Config struct {
	Base          BaseConfig          `yaml:"base" mapstructure:"base"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Uploads       UploadsConfig       `yaml:"uploads" mapstructure:"uploads"`
	STT           STTConfig           `yaml:"stt" mapstructure:"stt"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Analysis      AnalysisConfig      `yaml:"analysis" mapstructure:"analysis"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// BaseConfig contains essential fields that every service needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string   `yaml:"host" mapstructure:"host"`
	Port         int      `yaml:"port" mapstructure:"port"`
	ReadTimeout  int      `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int      `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int      `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// UploadsConfig configures local audio upload storage.
type UploadsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// STTConfig configures the speech-to-text provider.
type STTConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// PollTimeout bounds the provider poll loop. Zero means wait indefinitely.
	PollTimeout time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// LLMConfig configures the language model provider.
type LLMConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AnalysisConfig configures the self-correcting analysis engine.
type AnalysisConfig struct {
	// MaxRetries is the number of repair attempts after the initial call.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// RetryBackoff is the fixed delay before each repair attempt.
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// PipelineConfig configures job orchestration.
type PipelineConfig struct {
	Language    string `yaml:"language" mapstructure:"language"`
	Diarization bool   `yaml:"diarization" mapstructure:"diarization"`
	// SourceTimeout bounds the processing of a single audio source.
	// Zero means no bound.
	SourceTimeout time.Duration `yaml:"source_timeout" mapstructure:"source_timeout"`
}

// ObservabilityConfig configures OpenTelemetry exporters.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies default values to all sections.
func (c *Config) ApplyDefaults() {
	if c.Base.Name == "" {
		c.Base.Name = "callinsight"
	}
	if c.Base.Environment == "" {
		c.Base.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "temp_uploads"
	}
	if c.STT.BaseURL == "" {
		c.STT.BaseURL = "https://api.assemblyai.com/v2"
	}
	if c.STT.PollInterval == 0 {
		c.STT.PollInterval = 5 * time.Second
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.Analysis.MaxRetries == 0 {
		c.Analysis.MaxRetries = 2
	}
	if c.Analysis.RetryBackoff == 0 {
		c.Analysis.RetryBackoff = time.Second
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535] (got: %d)", c.Server.Port)
	}
	if c.STT.APIKey == "" {
		return fmt.Errorf("stt.api_key is required (set STT_API_KEY)")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set LLM_API_KEY)")
	}
	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("analysis.max_retries must not be negative (got: %d)", c.Analysis.MaxRetries)
	}
	return nil
}
