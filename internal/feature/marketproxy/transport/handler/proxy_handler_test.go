package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"strings"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_dashboard/internal/feature/marketproxy/domain"
	"stock_dashboard/internal/feature/marketproxy/transport/handler"
	"stock_dashboard/internal/feature/marketproxy/usecase"
	"stock_dashboard/internal/platform/externalapi/marketstack"
	"stock_dashboard/internal/platform/http/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeProvider はMarketstackを模したテスト用上流サーバーです。
type fakeProvider struct {
	server *httptest.Server
	calls  atomic.Int32
	paths  chan string
	querys chan url.Values
}

func newFakeProvider(t *testing.T, fn func(w http.ResponseWriter, r *http.Request)) *fakeProvider {
	t.Helper()
	p := &fakeProvider{paths: make(chan string, 8), querys: make(chan url.Values, 8)}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		p.paths <- r.URL.Path
		p.querys <- r.URL.Query()
		fn(w, r)
	}))
	t.Cleanup(p.server.Close)
	return p
}

func jsonReply(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func setupRouter(p *fakeProvider, key string, cfg handler.Config) *gin.Engine {
	base := "http://127.0.0.1:1"
	client := http.DefaultClient
	if p != nil {
		base = p.server.URL
		client = p.server.Client()
	}
	uc := usecase.NewProxyUsecase(marketstack.NewClient(base, client), usecase.Options{AccessKey: key, Debug: cfg.Debug})
	h := handler.NewProxyHandler(uc, cfg)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Group("", handler.PreflightCache(), cors.New(handler.CORSConfig(h.Config()))).Any("/api/marketstack", h.Handle)
	r.GET("/api/env-check", h.EnvCheck)
	return r
}

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	return doWithHeaders(r, method, target, nil)
}

func doWithHeaders(r *gin.Engine, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error map[string]any `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NotNil(t, env.Error)
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), env.Error["request_id"])
	return env.Error
}

var defaultCfg = handler.Config{AllowOrigin: "*", CacheMaxAge: 30}

const appOrigin = "https://app.example.com"

// TestProxyHandler_Preflight はブラウザのプリフライトにcorsミドルウェアが204で応答することを検証します。
func TestProxyHandler_Preflight(t *testing.T) {
	t.Parallel()

	r := setupRouter(nil, "k", handler.Config{AllowOrigin: appOrigin, CacheMaxAge: 30})
	w := doWithHeaders(r, http.MethodOptions, "/api/marketstack", map[string]string{
		"Origin":                        appOrigin,
		"Access-Control-Request-Method": http.MethodGet,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Equal(t, appOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "content-type", strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "max-age=86400", w.Header().Get("Cache-Control"))
}

// TestProxyHandler_Preflight_AllOrigins は ALLOW_ORIGIN=* のとき "*" を返すことを検証します。
func TestProxyHandler_Preflight_AllOrigins(t *testing.T) {
	t.Parallel()

	r := setupRouter(nil, "k", defaultCfg)
	w := doWithHeaders(r, http.MethodOptions, "/api/marketstack", map[string]string{
		"Origin":                        appOrigin,
		"Access-Control-Request-Method": http.MethodGet,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "max-age=86400", w.Header().Get("Cache-Control"))
}

// TestProxyHandler_OptionsWithoutOrigin はOrigin無しのOPTIONSにもハンドラーが204で応答することを検証します。
func TestProxyHandler_OptionsWithoutOrigin(t *testing.T) {
	t.Parallel()

	r := setupRouter(nil, "k", handler.Config{AllowOrigin: appOrigin, CacheMaxAge: 30})
	w := do(r, http.MethodOptions, "/api/marketstack")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Equal(t, appOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "max-age=86400", w.Header().Get("Cache-Control"))
}

// TestProxyHandler_CORSOrigin は許可オリジンからのGETにAllow-Originが付き、他のオリジンは拒否されることを検証します。
func TestProxyHandler_CORSOrigin(t *testing.T) {
	t.Parallel()

	r := setupRouter(nil, "k", handler.Config{AllowOrigin: appOrigin, CacheMaxAge: 30})

	w := doWithHeaders(r, http.MethodGet, "/api/marketstack?test=1", map[string]string{"Origin": appOrigin})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, appOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	w = doWithHeaders(r, http.MethodGet, "/api/marketstack?test=1", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSConfig(t *testing.T) {
	t.Parallel()

	all := handler.CORSConfig(handler.Config{AllowOrigin: "*"})
	assert.True(t, all.AllowAllOrigins)
	assert.Nil(t, all.AllowOriginFunc)
	assert.NoError(t, all.Validate())

	one := handler.CORSConfig(handler.Config{AllowOrigin: appOrigin})
	assert.False(t, one.AllowAllOrigins)
	require.NotNil(t, one.AllowOriginFunc)
	assert.True(t, one.AllowOriginFunc(appOrigin))
	assert.False(t, one.AllowOriginFunc("https://other.example.com"))
	assert.NoError(t, one.Validate())
	assert.Equal(t, handler.PreflightMaxAge, one.MaxAge)
}

func TestProxyHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := setupRouter(nil, "k", defaultCfg)
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := do(r, m, "/api/marketstack?endpoint=eod")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, m)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "Method not allowed. Use GET.", decodeError(t, w)["message"])
	}
}

func TestProxyHandler_LivenessProbe(t *testing.T) {
	t.Parallel()

	// キー未設定でも test=1 は応答する
	r := setupRouter(nil, "", defaultCfg)
	w := do(r, http.MethodGet, "/api/marketstack?test=1")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Function alive", body["message"])
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), body["request_id"])
}

func TestProxyHandler_MissingAccessKey(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, jsonReply(http.StatusOK, `{}`))
	r := setupRouter(p, "", defaultCfg)

	for _, target := range []string{"/api/marketstack", "/api/marketstack?endpoint=bad!endpoint", "/api/marketstack?endpoint=eod&symbols=AAPL"} {
		w := do(r, http.MethodGet, target)

		assert.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.Equal(t, "Missing MARKETSTACK_KEY environment variable.", decodeError(t, w)["message"])
	}
	assert.Zero(t, p.calls.Load())
}

func TestProxyHandler_InvalidEndpointNeverReachesUpstream(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, jsonReply(http.StatusOK, `{}`))
	r := setupRouter(p, "k", defaultCfg)

	for _, ep := range []string{"eod/latest!", "..%2Fsecret", "eod%20latest", "%20%20", "eod.json", "eod?x"} {
		w := do(r, http.MethodGet, "/api/marketstack?endpoint="+ep)

		assert.Equal(t, http.StatusBadRequest, w.Code, ep)
		assert.Equal(t, "Invalid endpoint.", decodeError(t, w)["message"])
	}
	assert.Zero(t, p.calls.Load())
}

// TestProxyHandler_PassThrough は転送パラメータ・アクセスキー注入・キャッシュヘッダーを検証します。
func TestProxyHandler_PassThrough(t *testing.T) {
	t.Parallel()

	body := `{"data":[{"symbol":"AAPL","close":150.2}]}`
	p := newFakeProvider(t, jsonReply(http.StatusOK, body))
	r := setupRouter(p, "secret", defaultCfg)

	w := do(r, http.MethodGet, "/api/marketstack?endpoint=eod&symbols=AAPL&limit=30&autoFallback=0&noCache=0")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "public, s-maxage=30, stale-while-revalidate=30", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.Empty(t, w.Header().Get(handler.HeaderFallbackFrom))

	assert.Equal(t, "/eod", <-p.paths)
	q := <-p.querys
	assert.Equal(t, url.Values{"access_key": {"secret"}, "symbols": {"AAPL"}, "limit": {"30"}}, q)
}

func TestProxyHandler_DefaultEndpoint(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, jsonReply(http.StatusOK, `{"data":[]}`))
	r := setupRouter(p, "k", defaultCfg)

	w := do(r, http.MethodGet, "/api/marketstack?symbols=MSFT")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/eod/latest", <-p.paths)
}

// TestProxyHandler_CacheControl はnoCacheとmax-ageの組み合わせでヘッダー値が決まることを検証します。
func TestProxyHandler_CacheControl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		maxAge int
		query  string
		want   string
	}{
		{"default", 30, "", "public, s-maxage=30, stale-while-revalidate=30"},
		{"custom max age", 120, "", "public, s-maxage=120, stale-while-revalidate=30"},
		{"noCache=1", 30, "&noCache=1", "no-store"},
		{"noCache other value keeps cache", 30, "&noCache=true", "public, s-maxage=30, stale-while-revalidate=30"},
		{"zero max age", 0, "", "no-store"},
		{"negative max age", -5, "", "no-store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newFakeProvider(t, jsonReply(http.StatusOK, `{}`))
			r := setupRouter(p, "k", handler.Config{AllowOrigin: "*", CacheMaxAge: tt.maxAge})

			w := do(r, http.MethodGet, "/api/marketstack?endpoint=eod"+tt.query)

			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
			q := <-p.querys
			assert.NotContains(t, q, "noCache")
		})
	}
}

// TestProxyHandler_Fallback はintraday/latestのアクセス制限時にeod/latestへ1回だけ再試行することを検証します。
func TestProxyHandler_Fallback(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/intraday/latest" {
			jsonReply(http.StatusForbidden, `{"error":{"code":"function_access_restricted","message":"restricted"}}`)(w, r)
			return
		}
		jsonReply(http.StatusOK, `{"data":[{"symbol":"AAPL","close":148.5}]}`)(w, r)
	})
	r := setupRouter(p, "k", defaultCfg)

	w := do(r, http.MethodGet, "/api/marketstack?endpoint=intraday/latest&symbols=AAPL&exchange=XNAS")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "intraday/latest", w.Header().Get(handler.HeaderFallbackFrom))
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, "/intraday/latest", <-p.paths)
	assert.Equal(t, "/eod/latest", <-p.paths)
	first, second := <-p.querys, <-p.querys
	assert.Equal(t, first, second)
	assert.NotContains(t, second, "endpoint")

	var body struct {
		Data []map[string]any `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "intraday/latest", body.Meta["fell_back_from"])
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), body.Meta["request_id"])
	assert.Equal(t, "AAPL", body.Data[0]["symbol"])
}

func TestProxyHandler_FallbackDisabled(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, jsonReply(http.StatusForbidden, `{"error":{"code":"function_access_restricted"}}`))
	r := setupRouter(p, "k", defaultCfg)

	w := do(r, http.MethodGet, "/api/marketstack?endpoint=intraday/latest&autoFallback=0")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int32(1), p.calls.Load())
	e := decodeError(t, w)
	assert.Equal(t, "Upstream API error.", e["message"])
	assert.Equal(t, "intraday/latest", e["endpoint"])
	assert.EqualValues(t, http.StatusForbidden, e["upstream_status"])
	assert.Equal(t, "Plan does not include intraday. Use eod or upgrade.", e["hint"])
	q := <-p.querys
	assert.NotContains(t, q, "autoFallback")
}

func TestProxyHandler_FallbackFailed(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/intraday/latest" {
			jsonReply(http.StatusForbidden, `{"error":{"code":"function_access_restricted"}}`)(w, r)
			return
		}
		jsonReply(http.StatusServiceUnavailable, `{"error":{"code":"maintenance"}}`)(w, r)
	})
	r := setupRouter(p, "k", defaultCfg)

	w := do(r, http.MethodGet, "/api/marketstack?endpoint=intraday/latest&symbols=AAPL")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "Fallback to eod/latest also failed.", e["message"])
	assert.Contains(t, e, "fb_error")
}

func TestProxyHandler_DebugEnvelope(t *testing.T) {
	t.Parallel()

	p := newFakeProvider(t, jsonReply(http.StatusOK, `{"data":[{"symbol":"AAPL"}]}`))
	r := setupRouter(p, "k", handler.Config{AllowOrigin: "*", CacheMaxAge: 30, Debug: true})

	w := do(r, http.MethodGet, "/api/marketstack?endpoint=eod/latest&symbols=AAPL")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "eod/latest", meta["endpoint"])
	assert.Contains(t, meta, "time_ms")
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), meta["request_id"])
}

// mockProxyUsecase は任意のエラーを返すためのモックです。
type mockProxyUsecase struct {
	err error
}

func (m *mockProxyUsecase) ResolveEndpoint(raw string) (string, error) {
	return usecase.SanitizeEndpoint(raw)
}

func (m *mockProxyUsecase) Forward(context.Context, usecase.ProxyRequest) (*usecase.ProxyResponse, error) {
	return nil, m.err
}

func TestProxyHandler_ErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"timeout", domain.NewTimeoutError(context.DeadlineExceeded), http.StatusGatewayTimeout, "Upstream request timed out."},
		{"unhandled", domain.NewUnhandledError(assert.AnError), http.StatusInternalServerError, "Unhandled server error."},
		{"plain error is wrapped", assert.AnError, http.StatusInternalServerError, "Unhandled server error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handler.NewProxyHandler(&mockProxyUsecase{err: tt.err}, defaultCfg)
			r := gin.New()
			r.Any("/api/marketstack", h.Handle)

			w := do(r, http.MethodGet, "/api/marketstack?endpoint=eod")

			assert.Equal(t, tt.wantStatus, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, e["message"])
			assert.Contains(t, e, "detail")
		})
	}
}

func TestProxyHandler_EnvCheck(t *testing.T) {
	t.Setenv("MARKETSTACK_KEY", "do-not-leak")
	t.Setenv("REACT_APP_MARKETSTACK_KEY", "")
	t.Setenv("GIN_MODE", "test")

	r := setupRouter(nil, "k", defaultCfg)
	w := do(r, http.MethodGet, "/api/env-check")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "do-not-leak")

	var body struct {
		OK      bool               `json:"ok"`
		Present map[string]bool    `json:"present"`
		Sample  map[string]*string `json:"sample"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.True(t, body.Present["MARKETSTACK_KEY"])
	assert.False(t, body.Present["REACT_APP_MARKETSTACK_KEY"])
	require.NotNil(t, body.Sample["GIN_MODE"])
	assert.Equal(t, "test", *body.Sample["GIN_MODE"])
}

func TestCacheControl(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no-store", handler.CacheControl(true, 30))
	assert.Equal(t, "no-store", handler.CacheControl(false, 0))
	assert.Equal(t, "public, s-maxage=45, stale-while-revalidate=30", handler.CacheControl(false, 45))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ALLOW_ORIGIN", "")
	t.Setenv("DEFAULT_CACHE_SMAXAGE", "")
	t.Setenv("DEBUG", "TRUE")

	cfg := handler.LoadConfig()
	assert.Equal(t, "*", cfg.AllowOrigin)
	assert.Equal(t, handler.DefaultCacheMaxAge, cfg.CacheMaxAge)
	assert.True(t, cfg.Debug)

	t.Setenv("ALLOW_ORIGIN", "https://stocks.example.com")
	t.Setenv("DEFAULT_CACHE_SMAXAGE", "0")
	t.Setenv("DEBUG", "yes")

	cfg = handler.LoadConfig()
	assert.Equal(t, "https://stocks.example.com", cfg.AllowOrigin)
	assert.Equal(t, 0, cfg.CacheMaxAge)
	assert.False(t, cfg.Debug)
}
