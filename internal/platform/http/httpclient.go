package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は上流API（Marketstack、EmailJSなど）呼び出し用のHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: HTTP_PROXY / HTTPS_PROXY が設定されていれば使用
//   - Dialer.Timeout: TCP接続確立の上限
//   - ResponseHeaderTimeout: ヘッダー受信までの上限（timeout と同じ値）
//   - MaxIdleConnsPerHost: 同一ホストへの接続再利用数
//   - Client.Timeout: リクエスト全体の上限。0 以下ならクライアント側では打ち切らない
//
// 注意:
//   - 呼び出し側は context.WithTimeout で個別のリクエストを打ち切ること。
//     プロキシのタイムアウト判定は context の期限切れで行うため、
//     Client.Timeout はそれより長い安全網として扱う
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if timeout > 0 {
		t.ResponseHeaderTimeout = timeout
	}

	c := &http.Client{Transport: t}
	if timeout > 0 {
		c.Timeout = timeout + time.Second
	}
	return c
}
