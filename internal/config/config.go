// Package config loads pipeline configuration from the environment, plus a
// YAML file for sources and category definitions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Sources / categories file
	SourcesConfigPath string

	// Ledger settings
	DatabaseURL          string // postgres; empty = file ledger
	LedgerPath           string
	LedgerRetentionHours int

	// Summarizer settings
	SummaryBackend           string // "gemini" or "openai"
	GeminiAPIKey             string
	GeminiModel              string
	OpenAIAPIKey             string
	OpenAIModel              string
	SummaryWorkers           int
	SummaryTimeout           time.Duration
	SummaryMaxAttempts       int
	SummaryRetryDelay        time.Duration
	SummaryMaxRetryDelay     time.Duration
	SummaryMaxInputChars     int
	SummaryMaxChars          int
	SummaryRequestsPerMinute int
	MaxSummaryRequests       int // per-run budget, 0 = unlimited
	SummaryCacheTTLHours     int

	// Curation settings
	RelevanceThreshold  float64
	SimilarityThreshold float64
	WindowHours         int

	// Connector settings
	FetchTimeout        time.Duration
	ExtractMinBodyRunes int

	// App settings
	RunDeadline time.Duration
	Debug       bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourcesConfigPath:        "configs/sources.yaml",
		LedgerPath:               "ledger.json",
		LedgerRetentionHours:     7 * 24,
		SummaryBackend:           "gemini",
		GeminiModel:              "gemini-1.5-flash",
		SummaryWorkers:           3,
		SummaryTimeout:           30 * time.Second,
		SummaryMaxAttempts:       3,
		SummaryRetryDelay:        2 * time.Second,
		SummaryMaxRetryDelay:     30 * time.Second,
		SummaryMaxInputChars:     6000,
		SummaryMaxChars:          1200,
		SummaryRequestsPerMinute: 30,
		SummaryCacheTTLHours:     48,
		RelevanceThreshold:       20,
		SimilarityThreshold:      0.9,
		WindowHours:              24,
		FetchTimeout:             30 * time.Second,
		ExtractMinBodyRunes:      400,
		RunDeadline:              15 * time.Minute,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.LedgerPath = getEnvOrDefault("LEDGER_PATH", cfg.LedgerPath)
	cfg.LedgerRetentionHours = getEnvIntOrDefault("LEDGER_RETENTION_HOURS", cfg.LedgerRetentionHours)
	cfg.SummaryBackend = getEnvOrDefault("SUMMARY_BACKEND", cfg.SummaryBackend)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)

	cfg.SummaryWorkers = getEnvIntOrDefault("SUMMARY_WORKERS", cfg.SummaryWorkers)
	cfg.SummaryMaxAttempts = getEnvIntOrDefault("SUMMARY_MAX_ATTEMPTS", cfg.SummaryMaxAttempts)
	cfg.SummaryMaxInputChars = getEnvIntOrDefault("SUMMARY_MAX_INPUT_CHARS", cfg.SummaryMaxInputChars)
	cfg.SummaryMaxChars = getEnvIntOrDefault("SUMMARY_MAX_CHARS", cfg.SummaryMaxChars)
	cfg.SummaryRequestsPerMinute = getEnvIntOrDefault("SUMMARY_REQUESTS_PER_MINUTE", cfg.SummaryRequestsPerMinute)
	cfg.MaxSummaryRequests = getEnvIntOrDefault("MAX_SUMMARY_REQUESTS", cfg.MaxSummaryRequests)
	cfg.SummaryCacheTTLHours = getEnvIntOrDefault("SUMMARY_CACHE_TTL_HOURS", cfg.SummaryCacheTTLHours)
	cfg.WindowHours = getEnvIntOrDefault("WINDOW_HOURS", cfg.WindowHours)
	cfg.ExtractMinBodyRunes = getEnvIntOrDefault("EXTRACT_MIN_BODY_RUNES", cfg.ExtractMinBodyRunes)

	if v := os.Getenv("SUMMARY_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SummaryTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("SUMMARY_RETRY_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SummaryRetryDelay = time.Duration(val) * time.Millisecond
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RUN_DEADLINE_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.RunDeadline = time.Duration(val) * time.Minute
		}
	}
	if v := os.Getenv("RELEVANCE_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val >= 0 {
			cfg.RelevanceThreshold = val
		}
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val <= 1 {
			cfg.SimilarityThreshold = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.SummaryBackend {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
		}
	default:
		return fmt.Errorf("SUMMARY_BACKEND must be 'gemini' or 'openai'")
	}
	if c.SummaryWorkers <= 0 {
		return fmt.Errorf("SUMMARY_WORKERS must be positive")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	return nil
}

func (c *Config) LedgerRetention() time.Duration {
	return time.Duration(c.LedgerRetentionHours) * time.Hour
}
