package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Defaults are overridden first by an
// optional YAML file, then by environment variables.
type Config struct {
	BaseURL        string
	AssetHost      string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBackoff   time.Duration
	StatePath      string
	MockAddr       string
}

type fileConfig struct {
	BaseURL               string `yaml:"base_url"`
	AssetHost             string `yaml:"asset_host"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	RetryAttempts         int    `yaml:"retry_attempts"`
	RetryBackoffSeconds   int    `yaml:"retry_backoff_seconds"`
	StatePath             string `yaml:"state_path"`
	MockAddr              string `yaml:"mock_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        "https://sismoya.bsit3b.site/api",
		AssetHost:      "https://sismoya.bsit3b.site",
		RequestTimeout: 10 * time.Second,
		RetryAttempts:  3,
		RetryBackoff:   time.Second,
		StatePath:      defaultStatePath(),
		MockAddr:       ":8080",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if any),
// and environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		applyFile(&cfg, fc)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv builds Config with defaults overridden by environment variables only.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.AssetHost != "" {
		cfg.AssetHost = fc.AssetHost
	}
	if fc.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(fc.RequestTimeoutSeconds) * time.Second
	}
	if fc.RetryAttempts > 0 {
		cfg.RetryAttempts = fc.RetryAttempts
	}
	if fc.RetryBackoffSeconds > 0 {
		cfg.RetryBackoff = time.Duration(fc.RetryBackoffSeconds) * time.Second
	}
	if fc.StatePath != "" {
		cfg.StatePath = fc.StatePath
	}
	if fc.MockAddr != "" {
		cfg.MockAddr = fc.MockAddr
	}
}

func applyEnv(cfg *Config) {
	cfg.BaseURL = envOrDefault("AQUAFLOW_BASE_URL", cfg.BaseURL)
	cfg.AssetHost = envOrDefault("AQUAFLOW_ASSET_HOST", cfg.AssetHost)
	cfg.RequestTimeout = envDuration("AQUAFLOW_TIMEOUT_SECONDS", cfg.RequestTimeout)
	cfg.RetryAttempts = envInt("AQUAFLOW_RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryBackoff = envDuration("AQUAFLOW_RETRY_BACKOFF_SECONDS", cfg.RetryBackoff)
	cfg.StatePath = envOrDefault("AQUAFLOW_STATE_PATH", cfg.StatePath)
	cfg.MockAddr = envOrDefault("AQUAFLOW_MOCK_ADDR", cfg.MockAddr)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "aquaflow-state.json"
	}
	return filepath.Join(dir, "aquaflow", "state.json")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
