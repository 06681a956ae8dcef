package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.STT.PollInterval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %s", cfg.STT.PollInterval)
	}
	if cfg.STT.PollTimeout != 0 {
		t.Errorf("expected unbounded poll timeout by default, got %s", cfg.STT.PollTimeout)
	}
	if cfg.Analysis.MaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", cfg.Analysis.MaxRetries)
	}
	if cfg.Analysis.RetryBackoff != time.Second {
		t.Errorf("expected 1s backoff, got %s", cfg.Analysis.RetryBackoff)
	}
	if cfg.Uploads.Dir != "temp_uploads" {
		t.Errorf("expected temp_uploads, got %s", cfg.Uploads.Dir)
	}
}

func TestValidateRequiresKeys(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API keys")
	}

	cfg.STT.APIKey = "stt-key"
	cfg.LLM.APIKey = "llm-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	content := `
base:
  name: callinsight-test
server:
  port: 9100
stt:
  api_key: key-a
  poll_interval: 10ms
llm:
  api_key: key-b
analysis:
  max_retries: 1
`
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(WithConfigFile(configFile))
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Base.Name != "callinsight-test" {
		t.Errorf("expected name from file, got %s", cfg.Base.Name)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.STT.PollInterval != 10*time.Millisecond {
		t.Errorf("expected 10ms poll interval, got %s", cfg.STT.PollInterval)
	}
	if cfg.Analysis.MaxRetries != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.Analysis.MaxRetries)
	}
	// Defaults still fill the gaps.
	if cfg.LLM.Model == "" {
		t.Error("expected default model")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configFile, []byte("server:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STT_API_KEY", "env-stt")
	t.Setenv("LLM_API_KEY", "env-llm")

	cfg, err := Load(WithConfigFile(configFile))
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.STT.APIKey != "env-stt" {
		t.Errorf("expected env key, got %s", cfg.STT.APIKey)
	}
	if cfg.LLM.APIKey != "env-llm" {
		t.Errorf("expected env key, got %s", cfg.LLM.APIKey)
	}
}
