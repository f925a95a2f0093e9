// Package config builds the gateway configuration from the environment once
// at startup. The resulting Config is injected into the handler; nothing
// reads environment variables at request time.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultListenAddr         = ":8080"
	DefaultModel              = "gemini-2.0-flash-lite"
	DefaultContextBudgetChars = 2000
	DefaultMaxOutputTokens    = 8192
	DefaultTemperature        = 0.7
)

// Config is the explicit configuration object for the gateway.
type Config struct {
	// ListenAddr is the HTTP listen address (LISTEN_ADDR).
	ListenAddr string

	// GeminiAPIKey authenticates against the upstream API (GEMINI_API_KEY).
	GeminiAPIKey string

	// GeminiBaseURL overrides the upstream endpoint, mainly for tests
	// (GEMINI_API_BASE_URL). Empty uses the provider default.
	GeminiBaseURL string

	// ProPassword is the shared secret for pro-mode access (PRO_PASSWORD).
	// Empty means pro verification is unconfigured and fails with a server
	// error rather than an auth error.
	ProPassword string

	// Model is the upstream model identifier (GEMINI_MODEL).
	Model string

	// ContextBudgetChars caps memory text injected into the system prompt
	// (CONTEXT_BUDGET_CHARS).
	ContextBudgetChars int

	// MaxOutputTokens and Temperature are generation parameters
	// (MAX_OUTPUT_TOKENS, TEMPERATURE).
	MaxOutputTokens int
	Temperature     float32
}

// FromEnv reads the configuration from the process environment, applying
// defaults for everything except the API key. Callers load .env files before
// calling this.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:    envOr("LISTEN_ADDR", DefaultListenAddr),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_API_BASE_URL"),
		ProPassword:   os.Getenv("PRO_PASSWORD"),
		Model:         envOr("GEMINI_MODEL", DefaultModel),
	}

	var err error
	if cfg.ContextBudgetChars, err = envInt("CONTEXT_BUDGET_CHARS", DefaultContextBudgetChars); err != nil {
		return Config{}, err
	}
	if cfg.MaxOutputTokens, err = envInt("MAX_OUTPUT_TOKENS", DefaultMaxOutputTokens); err != nil {
		return Config{}, err
	}
	if cfg.Temperature, err = envFloat32("TEMPERATURE", DefaultTemperature); err != nil {
		return Config{}, err
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}

func envFloat32(key string, fallback float32) (float32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: expected number, got %q", key, v)
	}
	return float32(f), nil
}
