package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Source names where an airline's configuration is read from.
type Source string

const (
	SourceFile        Source = "file"
	SourceEnvironment Source = "environment"
	SourceDefault     Source = "default"
)

// rawConfig is the on-disk JSON shape; durations are carried in
// milliseconds so files stay plain numbers.
type rawConfig struct {
	Airline   string `json:"airline"`
	BaseURL   string `json:"base_url"`
	TimeoutMs int    `json:"timeout_ms"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	ExpiresAt string `json:"expires_at,omitempty"`
	RateLimits struct {
		PerMinute int `json:"per_minute"`
		PerHour   int `json:"per_hour"`
	} `json:"rate_limits"`
	Retry struct {
		MaxRetries        int     `json:"max_retries"`
		BackoffMultiplier float64 `json:"backoff_multiplier"`
		InitialDelayMs    int     `json:"initial_delay_ms"`
	} `json:"retry"`
	Environment string `json:"environment"`
}

func (r rawConfig) toConfig(airline string) (*AirlineConfig, error) {
	cfg := &AirlineConfig{
		Airline: airline,
		BaseURL: r.BaseURL,
		Timeout: time.Duration(r.TimeoutMs) * time.Millisecond,
		RateLimits: RateLimits{
			PerMinute: r.RateLimits.PerMinute,
			PerHour:   r.RateLimits.PerHour,
		},
		Retry: RetryPolicy{
			MaxRetries:        r.Retry.MaxRetries,
			BackoffMultiplier: r.Retry.BackoffMultiplier,
			InitialDelay:      time.Duration(r.Retry.InitialDelayMs) * time.Millisecond,
		},
		Environment: r.Environment,
		Version:     1,
		LastUpdated: time.Now(),
		Credentials: Credentials{
			APIKey:    r.APIKey,
			APISecret: r.APISecret,
		},
	}

	if r.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("parse expires_at: %w", err)
		}
		cfg.Credentials.ExpiresAt = &t
	}

	applyDefaults(cfg)
	return cfg, nil
}

// loadFromFile reads <dir>/<airline>.json.
func loadFromFile(dir, airline string) (*AirlineConfig, error) {
	path := filepath.Join(dir, airline+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw.toConfig(airline)
}

// loadFromEnv reads the {AIRLINE}_{FIELD} convention, e.g. AERIS_BASE_URL,
// AERIS_API_KEY, AERIS_TIMEOUT_MS, AERIS_REQUESTS_PER_MINUTE.
func loadFromEnv(airline string) (*AirlineConfig, error) {
	prefix := strings.ToUpper(strings.ReplaceAll(airline, "-", "_")) + "_"

	baseURL := os.Getenv(prefix + "BASE_URL")
	apiKey := os.Getenv(prefix + "API_KEY")
	if baseURL == "" && apiKey == "" {
		return nil, fmt.Errorf("no environment configuration for %s", airline)
	}

	var raw rawConfig
	raw.BaseURL = baseURL
	raw.APIKey = apiKey
	raw.APISecret = os.Getenv(prefix + "API_SECRET")
	raw.TimeoutMs = envInt(prefix+"TIMEOUT_MS", 0)
	raw.ExpiresAt = os.Getenv(prefix + "CREDENTIALS_EXPIRE_AT")
	raw.RateLimits.PerMinute = envInt(prefix+"REQUESTS_PER_MINUTE", 0)
	raw.RateLimits.PerHour = envInt(prefix+"REQUESTS_PER_HOUR", 0)
	raw.Retry.MaxRetries = envInt(prefix+"MAX_RETRIES", 0)
	raw.Retry.InitialDelayMs = envInt(prefix+"RETRY_INITIAL_DELAY_MS", 0)
	raw.Environment = os.Getenv(prefix + "ENVIRONMENT")

	return raw.toConfig(airline)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// defaultConfig synthesizes a usable configuration for airlines with no file
// or environment entry.
func defaultConfig(airline string) *AirlineConfig {
	cfg := &AirlineConfig{
		Airline: airline,
		BaseURL: fmt.Sprintf("https://api.%s.example.com/v1", airline),
		Credentials: Credentials{
			APIKey: "dev-" + airline,
		},
		Version:     1,
		LastUpdated: time.Now(),
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills fields that were omitted entirely. Explicitly invalid
// values (negatives) are left for Validate to reject.
func applyDefaults(cfg *AirlineConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimits.PerMinute == 0 {
		cfg.RateLimits.PerMinute = 60
	}
	if cfg.RateLimits.PerHour == 0 {
		cfg.RateLimits.PerHour = 1000
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = 2
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 100 * time.Millisecond
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
}
