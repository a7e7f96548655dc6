package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// PreflightMaxAge はプリフライト結果のキャッシュ期間です。
const PreflightMaxAge = 24 * time.Hour

// CORSConfig は ALLOW_ORIGIN に従う gin-contrib/cors の設定を返します。
// "*" なら全オリジンを許可し、それ以外は完全一致のオリジンだけを許可します。
func CORSConfig(cfg Config) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"content-type"},
		MaxAge:       PreflightMaxAge,
	}
	if cfg.AllowOrigin == "" || cfg.AllowOrigin == "*" {
		cc.AllowAllOrigins = true
		return cc
	}
	origin := cfg.AllowOrigin
	cc.AllowOriginFunc = func(o string) bool { return o == origin }
	return cc
}

// PreflightCache はOPTIONSの応答に Cache-Control: max-age=86400 を付けます。
// cors.New がプリフライトを中断するため、cors.New より前に登録すること。
func PreflightCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Header("Cache-Control", preflightCacheControl)
		}
		c.Next()
	}
}
