// Package emailjs はEmailJSのREST APIでウェルカムメールを送信します。
package emailjs

import (
	"os"
	"strings"
)

// DefaultBaseURL はEmailJS APIのベースURLです。
const DefaultBaseURL = "https://api.emailjs.com"

// Config はEmailJSの接続設定です。
type Config struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	// PublicKey はリクエストの user_id として送られます。
	PublicKey string
	// PrivateKey は設定されている場合のみ accessToken として送られます。
	PrivateKey string
}

// LoadConfig は環境変数からEmailJSの設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		BaseURL:    strings.TrimSpace(os.Getenv("EMAILJS_BASE_URL")),
		ServiceID:  strings.TrimSpace(os.Getenv("EMAILJS_SERVICE_ID")),
		TemplateID: strings.TrimSpace(os.Getenv("EMAILJS_TEMPLATE_ID")),
		PublicKey:  strings.TrimSpace(os.Getenv("EMAILJS_PUBLIC_KEY")),
		PrivateKey: strings.TrimSpace(os.Getenv("EMAILJS_PRIVATE_KEY")),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}

// Enabled は送信に必要な値が揃っているかを返します。
func (c Config) Enabled() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}
