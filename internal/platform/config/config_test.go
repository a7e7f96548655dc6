package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DASHBOARD_PROXY_URL", "DASHBOARD_TIMEOUT_MS", "DASHBOARD_SYMBOL", "DASHBOARD_PROFILE_DIR",
		"EMAILJS_BASE_URL", "EMAILJS_SERVICE_ID", "EMAILJS_TEMPLATE_ID", "EMAILJS_PUBLIC_KEY",
		"EMAILJS_PRIVATE_KEY", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
proxy:
  url: http://proxy.internal:9000/api/marketstack
  timeout_ms: 5000
dashboard:
  symbol: MSFT
  exchange: XNAS
  timeframe: 1M
  location: UTC
profile:
  dir: /tmp/profile
emailjs:
  service_id: svc
  template_id: tpl
  public_key: pub
logging:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://proxy.internal:9000/api/marketstack", cfg.Proxy.URL)
	assert.Equal(t, 5*time.Second, cfg.Proxy.Timeout())
	assert.Equal(t, Dashboard{Symbol: "MSFT", Exchange: "XNAS", Timeframe: "1M", Location: "UTC"}, cfg.Dashboard)
	assert.Equal(t, "/tmp/profile", cfg.Profile.Dir)
	assert.Equal(t, "svc", cfg.EmailJS.ServiceID)
	// ファイルに無い項目は既定値のまま
	assert.Equal(t, "https://api.emailjs.com", cfg.EmailJS.BaseURL)
	assert.Equal(t, "dashboard.log", cfg.Logging.File)
	assert.Equal(t, "debug", cfg.Logging.Level)

	loc, err := cfg.LoadLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Proxy, cfg.Proxy)
	assert.Equal(t, "AAPL", cfg.Dashboard.Symbol)
	assert.Equal(t, "1D", cfg.Dashboard.Timeframe)

	loc, err := cfg.LoadLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_PROXY_URL", "http://localhost:9999")
	t.Setenv("DASHBOARD_TIMEOUT_MS", "nope")
	t.Setenv("DASHBOARD_SYMBOL", "TSLA")
	t.Setenv("EMAILJS_PUBLIC_KEY", "env-pub")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Proxy.URL)
	assert.Equal(t, 30000, cfg.Proxy.TimeoutMS)
	assert.Equal(t, "TSLA", cfg.Dashboard.Symbol)
	assert.Equal(t, "env-pub", cfg.EmailJS.PublicKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proxy: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
