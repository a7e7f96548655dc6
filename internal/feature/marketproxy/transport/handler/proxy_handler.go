// Package handler はmarketproxyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/feature/marketproxy/domain"
	"stock_dashboard/internal/feature/marketproxy/transport/http/dto"
	"stock_dashboard/internal/feature/marketproxy/usecase"
	"stock_dashboard/internal/platform/externalapi/marketstack"
	"stock_dashboard/internal/platform/http/middleware"
)

const (
	contentTypeJSON       = "application/json"
	preflightCacheControl = "max-age=86400"
	headerAllowOrigin     = "Access-Control-Allow-Origin"
	// HeaderFallbackFrom はeod/latestへフォールバックした場合に元のendpointを示します。
	HeaderFallbackFrom = "X-Fallback-From"
)

// ProxyUsecase はプロキシのユースケースインターフェースです。
type ProxyUsecase interface {
	ResolveEndpoint(raw string) (string, error)
	Forward(ctx context.Context, req usecase.ProxyRequest) (*usecase.ProxyResponse, error)
}

// ProxyHandler は /api/marketstack へのリクエストを処理します。
type ProxyHandler struct {
	uc  ProxyUsecase
	cfg Config
}

// NewProxyHandler はProxyHandlerの新しいインスタンスを生成します。
func NewProxyHandler(uc ProxyUsecase, cfg Config) *ProxyHandler {
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = "*"
	}
	return &ProxyHandler{uc: uc, cfg: cfg}
}

// Config はハンドラーの設定を返します。CORSミドルウェアの構築に使います。
func (h *ProxyHandler) Config() Config {
	return h.cfg
}

// Handle は全メソッドで登録され、メソッド判定もここで行います。
//
// エンドポイント例:
// GET /api/marketstack?endpoint=intraday/latest&symbols=AAPL&autoFallback=1&noCache=0
func (h *ProxyHandler) Handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		h.preflight(c)
		return
	}

	requestID := middleware.GetRequestID(c)
	h.allowOrigin(c)

	if c.Request.Method != http.MethodGet {
		h.fail(c, requestID, domain.ErrMethodNotAllowed)
		return
	}

	q := c.Request.URL.Query()
	if q.Get("test") == "1" {
		h.write(c, http.StatusOK, dto.LivenessResponse{OK: true, Message: "Function alive", RequestID: requestID})
		return
	}

	endpoint, err := h.uc.ResolveEndpoint(q.Get("endpoint"))
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	q.Del("endpoint")

	autoFallback := q.Get("autoFallback") != "0"
	q.Del("autoFallback")

	noCache := q.Get("noCache") == "1"
	q.Del("noCache")

	c.Header("Cache-Control", CacheControl(noCache, h.cfg.CacheMaxAge))

	res, err := h.uc.Forward(c.Request.Context(), usecase.ProxyRequest{
		RequestID:    requestID,
		Endpoint:     endpoint,
		Params:       q,
		AutoFallback: autoFallback,
	})
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	if res.FellBack {
		c.Header(HeaderFallbackFrom, endpoint)
	}
	c.Data(res.Status, contentTypeJSON, res.Body)
}

// preflight はcorsミドルウェアが処理しなかったOPTIONS（Origin無しなど）に空ボディの204で応答します。
func (h *ProxyHandler) preflight(c *gin.Context) {
	h.allowOrigin(c)
	c.Header("Cache-Control", preflightCacheControl)
	c.Status(http.StatusNoContent)
}

// allowOrigin はcorsミドルウェアが設定していない場合のみ Allow-Origin を付けます。
func (h *ProxyHandler) allowOrigin(c *gin.Context) {
	if c.Writer.Header().Get(headerAllowOrigin) == "" {
		c.Header(headerAllowOrigin, h.cfg.AllowOrigin)
	}
}

// fail はエラーを {error:{message, request_id, ...extra}} 形式で書き出します。
func (h *ProxyHandler) fail(c *gin.Context, requestID string, err error) {
	var pe *domain.ProxyError
	if !errors.As(err, &pe) {
		pe = domain.NewUnhandledError(err)
	}

	body := dto.ErrorBody{}
	for k, v := range pe.Extra {
		body[k] = v
	}
	body["message"] = pe.Message
	body["request_id"] = requestID

	if h.cfg.Debug {
		slog.Error("[marketstack]", "status", pe.Status, "kind", pe.Kind, "request_id", requestID, "error", body)
	} else {
		slog.Warn("proxy request failed", "status", pe.Status, "kind", pe.Kind, "request_id", requestID)
	}
	h.write(c, pe.Status, dto.ErrorResponse{Error: body})
}

func (h *ProxyHandler) write(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		c.Data(http.StatusInternalServerError, contentTypeJSON, []byte(`{"error":{"message":"Unhandled server error."}}`))
		return
	}
	c.Data(status, contentTypeJSON, b)
}

// EnvCheck はアクセスキー用環境変数の有無だけを報告します。値は返しません。
func (h *ProxyHandler) EnvCheck(c *gin.Context) {
	present := make(map[string]bool, len(marketstack.AccessKeyEnvs))
	for _, name := range marketstack.AccessKeyEnvs {
		present[name] = os.Getenv(name) != ""
	}
	sample := map[string]*string{}
	for _, name := range []string{"GIN_MODE", "APP_ENV", "DEBUG"} {
		if v, ok := os.LookupEnv(name); ok {
			sample[name] = &v
		} else {
			sample[name] = nil
		}
	}
	c.Header("Cache-Control", "no-store")
	h.write(c, http.StatusOK, dto.EnvCheckResponse{OK: true, Message: "Env check", Present: present, Sample: sample})
}
