package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // explicit config file path
	EnvFile    string // explicit .env file path
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration from config.yml, the .env file, and environment
// variables (in increasing precedence), applies defaults, and validates.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFirst("./cmd/server/config.yml", "./config.yml")
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFirst(".env")
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", lc.ConfigFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindEnvKeys binds the keys viper cannot discover through AutomaticEnv alone
// (secrets that never appear in config.yml).
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"stt.api_key",
		"stt.base_url",
		"llm.api_key",
		"llm.base_url",
		"llm.model",
		"logging.level",
		"server.port",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
