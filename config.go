package lens

import (
	"os"
	"strings"
	"time"
)

// Config configures the Lens client.
type Config struct {
	// ConsoleURL is the base URL of the SorsAI console backend.
	// If empty, every resource renders its fixed fallback payload.
	ConsoleURL string

	// APIKey authenticates with the console. Optional; sent as a bearer
	// token when set.
	APIKey string

	// SourceID identifies this client instance in diagnostics.
	// Defaults to hostname if not set.
	SourceID string

	// RequestTimeout bounds every console request. A request that exceeds it
	// degrades to the resource fallback instead of hanging. Defaults to 30s.
	RequestTimeout time.Duration

	// Responder is an optional local answerer used as the second tier of the
	// assistant fallback chain. When nil, a failed console exchange falls
	// straight through to the fixed acknowledgment.
	Responder Responder

	// Debug enables verbose logging of all console API communications.
	// When enabled, requests, responses, and full error details are logged.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()
	return Config{
		RequestTimeout: 30 * time.Second,
		SourceID:       hostname,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	SORS_API_URL    → ConsoleURL
//	SORS_API_KEY    → APIKey
//	LENS_SOURCE_ID  → SourceID
//	LENS_TIMEOUT    → RequestTimeout (Go duration string)
//	LENS_DEBUG      → Debug (any non-empty value enables)
//	LENS_DEBUG_LOG  → DebugLogPath
func ConfigFromEnv() Config {
	cfg := Config{
		ConsoleURL:   os.Getenv("SORS_API_URL"),
		APIKey:       os.Getenv("SORS_API_KEY"),
		SourceID:     os.Getenv("LENS_SOURCE_ID"),
		Debug:        os.Getenv("LENS_DEBUG") != "",
		DebugLogPath: os.Getenv("LENS_DEBUG_LOG"),
	}
	if v := os.Getenv("LENS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	return cfg
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.ConsoleURL != "" && !strings.HasPrefix(c.ConsoleURL, "http://") && !strings.HasPrefix(c.ConsoleURL, "https://") {
		return &ValidationError{Field: "ConsoleURL", Message: "must be an http(s) URL"}
	}

	if c.RequestTimeout < 0 {
		return &ValidationError{Field: "RequestTimeout", Message: "must be non-negative"}
	}

	return nil
}

// IsOffline returns true if the client operates without a console backend.
// Offline mode is determined by ConsoleURL being empty; every resource then
// serves its documented fallback.
func (c *Config) IsOffline() bool {
	return c.ConsoleURL == ""
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	c.ConsoleURL = strings.TrimRight(c.ConsoleURL, "/")

	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.SourceID == "" {
		c.SourceID = defaults.SourceID
	}

	return c
}

// DefaultFilters is the fixed default lens every session starts from.
func DefaultFilters() FilterState {
	return FilterState{
		StartDate:    "2025-07-01",
		EndDate:      "2025-07-13",
		SKU:          "SKU_DEFAULT",
		Store:        "STORE_DEFAULT",
		Weather:      true,
		Promotions:   true,
		SocialTrends: true,
	}
}
