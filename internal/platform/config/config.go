// Package config loads the terminal dashboard's YAML configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for cmd/dashboard.
type Config struct {
	Proxy     Proxy     `yaml:"proxy"`
	Dashboard Dashboard `yaml:"dashboard"`
	Profile   Profile   `yaml:"profile"`
	EmailJS   EmailJS   `yaml:"emailjs"`
	Logging   Logging   `yaml:"logging"`
}

// Proxy locates the market-data proxy endpoint.
type Proxy struct {
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Timeout returns the limit for a single proxy call.
func (p Proxy) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// Dashboard holds what is shown on start-up.
type Dashboard struct {
	Symbol    string `yaml:"symbol"`
	Exchange  string `yaml:"exchange"`
	Timeframe string `yaml:"timeframe"`
	// Location is the IANA zone used for chart labels. Empty means local time.
	Location string `yaml:"location"`
}

// Profile configures where the profile record is kept.
type Profile struct {
	Dir string `yaml:"dir"`
}

// EmailJS holds the welcome email settings.
type EmailJS struct {
	BaseURL    string `yaml:"base_url"`
	ServiceID  string `yaml:"service_id"`
	TemplateID string `yaml:"template_id"`
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
}

// Logging configures the logger. The TUI owns the terminal, so logs go to File.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Proxy:     Proxy{URL: "http://localhost:8080/api/marketstack", TimeoutMS: 30000},
		Dashboard: Dashboard{Symbol: "AAPL", Timeframe: "1D"},
		Profile:   Profile{Dir: defaultProfileDir()},
		EmailJS:   EmailJS{BaseURL: "https://api.emailjs.com"},
		Logging:   Logging{Level: "info", File: "dashboard.log"},
	}
}

func defaultProfileDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "stock_dashboard"
	}
	return ".stock_dashboard"
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML file at path on top of Default, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides fields from well-known environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_PROXY_URL"); v != "" {
		cfg.Proxy.URL = v
	}
	if v := os.Getenv("DASHBOARD_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Proxy.TimeoutMS = n
		}
	}
	if v := os.Getenv("DASHBOARD_SYMBOL"); v != "" {
		cfg.Dashboard.Symbol = v
	}
	if v := os.Getenv("DASHBOARD_PROFILE_DIR"); v != "" {
		cfg.Profile.Dir = v
	}
	if v := os.Getenv("EMAILJS_BASE_URL"); v != "" {
		cfg.EmailJS.BaseURL = v
	}
	if v := os.Getenv("EMAILJS_SERVICE_ID"); v != "" {
		cfg.EmailJS.ServiceID = v
	}
	if v := os.Getenv("EMAILJS_TEMPLATE_ID"); v != "" {
		cfg.EmailJS.TemplateID = v
	}
	if v := os.Getenv("EMAILJS_PUBLIC_KEY"); v != "" {
		cfg.EmailJS.PublicKey = v
	}
	if v := os.Getenv("EMAILJS_PRIVATE_KEY"); v != "" {
		cfg.EmailJS.PrivateKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// LoadLocation resolves Dashboard.Location, falling back to local time.
func (c *Config) LoadLocation() (*time.Location, error) {
	if c.Dashboard.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Dashboard.Location)
}
