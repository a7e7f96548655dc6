// Package marketstack provides the HTTP client for the Marketstack market-data API.
package marketstack

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the Marketstack v2 API root.
	DefaultBaseURL = "https://api.marketstack.com/v2"
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 9000 * time.Millisecond
)

// AccessKeyEnvs lists the recognised access key variables in lookup order.
var AccessKeyEnvs = []string{
	"MARKETSTACK_KEY",
	"REACT_APP_MARKETSTACK_KEY",
	"REACT_APP_API_KEY",
}

// Config holds configuration for the Marketstack API client.
type Config struct {
	AccessKey string        // injected as access_key on every call
	BaseURL   string        // e.g. "https://api.marketstack.com/v2"
	Timeout   time.Duration // per-call timeout (FETCH_TIMEOUT_MS)
}

// LoadConfig loads Marketstack configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		AccessKey: LookupAccessKey(),
		BaseURL:   os.Getenv("MARKETSTACK_BASE_URL"),
		Timeout:   DefaultTimeout,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v := os.Getenv("FETCH_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}

// LookupAccessKey returns the first non-empty value among AccessKeyEnvs.
func LookupAccessKey() string {
	for _, name := range AccessKeyEnvs {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
