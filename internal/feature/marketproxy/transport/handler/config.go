package handler

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// DefaultCacheMaxAge は DEFAULT_CACHE_SMAXAGE 未設定時の s-maxage（秒）です。
const DefaultCacheMaxAge = 30

var debugPattern = regexp.MustCompile(`(?i)^true$`)

// Config はプロキシハンドラーの設定です。
type Config struct {
	AllowOrigin string
	CacheMaxAge int
	Debug       bool
}

// LoadConfig は ALLOW_ORIGIN、DEFAULT_CACHE_SMAXAGE、DEBUG を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		AllowOrigin: os.Getenv("ALLOW_ORIGIN"),
		CacheMaxAge: DefaultCacheMaxAge,
		Debug:       debugPattern.MatchString(os.Getenv("DEBUG")),
	}
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = "*"
	}
	if v := os.Getenv("DEFAULT_CACHE_SMAXAGE"); v != "" {
		// 数値でなければキャッシュ無効（no-store）とする
		n, err := strconv.Atoi(v)
		if err != nil {
			n = 0
		}
		cfg.CacheMaxAge = n
	}
	return cfg
}

// CacheControl はnoCacheと max-age からCache-Controlヘッダー値を決めます。
func CacheControl(noCache bool, maxAge int) string {
	if noCache || maxAge <= 0 {
		return "no-store"
	}
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=30", maxAge)
}
