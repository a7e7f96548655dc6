// Package inprocess はHTTPを経由せずにプロキシのユースケースを直接呼び出すFetcherです。
// サーバー側のダッシュボード表示で使います。
package inprocess

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"stock_dashboard/internal/feature/dashboard/adapters/proxyclient"
	"stock_dashboard/internal/feature/dashboard/usecase"
	proxyusecase "stock_dashboard/internal/feature/marketproxy/usecase"
)

// Proxy はプロキシのユースケースです。
type Proxy interface {
	ResolveEndpoint(raw string) (string, error)
	Forward(ctx context.Context, req proxyusecase.ProxyRequest) (*proxyusecase.ProxyResponse, error)
}

// Fetcher はProxyを呼び出し、HTTPクライアントと同じ形でデコードします。
type Fetcher struct {
	proxy Proxy
	// RequestID はリクエストIDの生成関数です。
	RequestID func() string
}

var _ usecase.Fetcher = (*Fetcher)(nil)

// NewFetcher はFetcherの新しいインスタンスを生成します。
func NewFetcher(proxy Proxy) *Fetcher {
	return &Fetcher{proxy: proxy, RequestID: uuid.NewString}
}

// Fetch はendpointを検証してから転送します。フォールバックは常に有効です。
func (f *Fetcher) Fetch(ctx context.Context, endpoint string, params url.Values) (any, error) {
	ep, err := f.proxy.ResolveEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	fwd := url.Values{}
	for k, vs := range params {
		fwd[k] = append([]string(nil), vs...)
	}

	res, err := f.proxy.Forward(ctx, proxyusecase.ProxyRequest{
		RequestID:    f.RequestID(),
		Endpoint:     ep,
		Params:       fwd,
		AutoFallback: true,
	})
	if err != nil {
		return nil, err
	}
	return proxyclient.DecodePayload(res.Body)
}
