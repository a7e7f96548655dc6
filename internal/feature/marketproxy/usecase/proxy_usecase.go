// Package usecase はMarketstackプロキシのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"stock_dashboard/internal/feature/marketproxy/domain"
)

// CodeFunctionAccessRestricted はプランにintradayが含まれない場合の上流エラーコードです。
const CodeFunctionAccessRestricted = "function_access_restricted"

// DefaultTimeout は上流呼び出し1回あたりの既定タイムアウトです。
const DefaultTimeout = 9000 * time.Millisecond

// UpstreamClient は上流プロバイダーへのGETを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UpstreamClient interface {
	Get(ctx context.Context, endpoint string, params url.Values) (*domain.UpstreamResponse, error)
}

// Options はプロキシの動作設定です。
type Options struct {
	AccessKey string
	Timeout   time.Duration
	// Debug が真なら成功レスポンスを {data, meta} で包みます。
	Debug bool
}

// ProxyRequest はハンドラーから渡される1リクエスト分の入力です。
type ProxyRequest struct {
	RequestID string
	// Endpoint は ResolveEndpoint で検証済みのリソースパスです。
	Endpoint string
	// Params はendpoint・autoFallback・noCacheを除いた転送パラメータです。
	Params       url.Values
	AutoFallback bool
}

// ProxyResponse は呼び出し元へそのまま書き出すJSONボディです。
type ProxyResponse struct {
	Status   int
	Body   []byte
	// FellBack はeod/latestへフォールバックした応答であることを示します。ハンドラーはヘッダーで伝えます。
	FellBack bool
}

// ProxyUsecase は上流へのリクエスト転送とフォールバックを行います。
type ProxyUsecase struct {
	upstream UpstreamClient
	opts     Options
	now      func() time.Time
}

// NewProxyUsecase はProxyUsecaseの新しいインスタンスを生成します。
func NewProxyUsecase(upstream UpstreamClient, opts Options) *ProxyUsecase {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &ProxyUsecase{upstream: upstream, opts: opts, now: time.Now}
}

// ResolveEndpoint はアクセスキーの有無を確認してからendpointを検証します。
// キーが無ければURLを組み立てる前に ErrMissingAccessKey を返します。
func (u *ProxyUsecase) ResolveEndpoint(raw string) (string, error) {
	if u.opts.AccessKey == "" {
		return "", domain.ErrMissingAccessKey
	}
	return SanitizeEndpoint(raw)
}

type envelopeMeta struct {
	RequestID    string `json:"request_id"`
	Endpoint     string `json:"endpoint"`
	TimeMS       *int64 `json:"time_ms,omitempty"`
	FellBackFrom string `json:"fell_back_from,omitempty"`
}

type envelope struct {
	Data any          `json:"data"`
	Meta envelopeMeta `json:"meta"`
}

// Forward は上流へリクエストを転送し、成功ボディまたは *domain.ProxyError を返します。
func (u *ProxyUsecase) Forward(ctx context.Context, req ProxyRequest) (*ProxyResponse, error) {
	if u.opts.AccessKey == "" {
		return nil, domain.ErrMissingAccessKey
	}

	rc := &domain.RequestContext{
		RequestID: req.RequestID,
		Endpoint:  req.Endpoint,
		Params:    req.Params,
		AccessKey: u.opts.AccessKey,
		Debug:     u.opts.Debug,
		StartedAt: u.now(),
	}

	res, err := u.fetch(ctx, rc.Endpoint, rc.UpstreamParams())
	if err != nil {
		return nil, transportError(err)
	}
	payload := res.Payload()

	if req.AutoFallback && isIntradayLatest(rc.Endpoint) &&
		res.Status >= http.StatusBadRequest && res.ErrorCode() == CodeFunctionAccessRestricted {
		slog.Info("intraday restricted, falling back", "request_id", rc.RequestID, "endpoint", rc.Endpoint)
		return u.fallback(ctx, rc)
	}

	if !res.OK() {
		slog.Warn("upstream returned error status",
			"request_id", rc.RequestID, "endpoint", rc.Endpoint, "status", res.Status)
		return nil, domain.NewUpstreamError(res.Status, rc.Endpoint, payload)
	}

	if rc.Debug {
		ms := u.now().Sub(rc.StartedAt).Milliseconds()
		return marshalOK(envelope{
			Data: dataOf(payload),
			Meta: envelopeMeta{RequestID: rc.RequestID, Endpoint: rc.Endpoint, TimeMS: &ms},
		}, false)
	}

	if s, ok := payload.(string); ok {
		// JSONでないボディはJSON文字列として返す
		return marshalOK(s, false)
	}
	return &ProxyResponse{Status: http.StatusOK, Body: res.Body}, nil
}

// fallback は同じ転送パラメータで eod/latest を1回だけ呼び出します。
func (u *ProxyUsecase) fallback(ctx context.Context, rc *domain.RequestContext) (*ProxyResponse, error) {
	res, err := u.fetch(ctx, FallbackEndpoint, rc.UpstreamParams())
	if err != nil {
		return nil, transportError(err)
	}
	payload := res.Payload()
	if !res.OK() {
		slog.Warn("fallback returned error status",
			"request_id", rc.RequestID, "endpoint", FallbackEndpoint, "status", res.Status)
		return nil, domain.NewFallbackError(res.Status, rc.Endpoint, payload)
	}
	return marshalOK(envelope{
		Data: dataOf(payload),
		Meta: envelopeMeta{RequestID: rc.RequestID, Endpoint: FallbackEndpoint, FellBackFrom: rc.Endpoint},
	}, true)
}

func (u *ProxyUsecase) fetch(ctx context.Context, endpoint string, params url.Values) (*domain.UpstreamResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()
	return u.upstream.Get(ctx, endpoint, params)
}

// transportError はタイムアウトとそれ以外の失敗を区別して *domain.ProxyError に変換します。
func transportError(err error) error {
	if isTimeout(err) {
		slog.Warn("upstream request timed out", "error", err)
		return domain.NewTimeoutError(err)
	}
	slog.Error("upstream request failed", "error", err)
	return domain.NewUnhandledError(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// dataOf は body.data が存在すればそれを、無ければbody自体を返します。
func dataOf(payload any) any {
	if obj, ok := payload.(map[string]any); ok {
		if d, ok := obj["data"]; ok && d != nil {
			return d
		}
	}
	return payload
}

func marshalOK(v any, fellBack bool) (*ProxyResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, domain.NewUnhandledError(err)
	}
	return &ProxyResponse{Status: http.StatusOK, Body: b, FellBack: fellBack}, nil
}
