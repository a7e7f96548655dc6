// Package proxyclient はダッシュボードからプロキシエンドポイントを呼び出すHTTPクライアントです。
package proxyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"stock_dashboard/internal/feature/dashboard/usecase"
	"stock_dashboard/internal/feature/marketproxy/domain"
)

// DefaultPath はプロキシエンドポイントのパスです。
const DefaultPath = "/api/marketstack"

// ErrProxyResponse はプロキシが200以外、または error フィールドを返した場合のエラーです。
var ErrProxyResponse = errors.New("proxy error response")

// Client はプロキシにGETし、JSONをデコードして返します。
type Client struct {
	endpointURL string
	client      *http.Client
	maxBody     int64
}

var _ usecase.Fetcher = (*Client)(nil)

// NewClient は proxyURL（例: http://localhost:8080/api/marketstack）を呼び出すClientを生成します。
// パスが無い場合は DefaultPath を補います。
func NewClient(proxyURL string, client *http.Client) *Client {
	u := strings.TrimRight(proxyURL, "/")
	if parsed, err := url.Parse(u); err == nil && (parsed.Path == "" || parsed.Path == "/") {
		u += DefaultPath
	}
	return &Client{endpointURL: u, client: client, maxBody: domain.MaxBodyBytes}
}

// WithMaxBody はボディの上限を差し替えます。上限を超えたボディはエラーになります。
func (c *Client) WithMaxBody(n int64) *Client {
	c.maxBody = n
	return c
}

// Fetch は endpoint と params をクエリにしてプロキシを呼び出します。
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (any, error) {
	q := url.Values{"endpoint": {endpoint}}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	slog.Debug("fetching marketstack", "endpoint", endpoint, "params", params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("proxyclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := domain.ReadBody(res.Body, c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("proxyclient: read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrProxyResponse, res.StatusCode, strings.TrimSpace(string(body)))
	}
	return DecodePayload(body)
}

// DecodePayload はプロキシのレスポンスボディをデコードします。
// トップレベルに error がある場合はそのmessage（無ければerror全体）をエラーにします。
func DecodePayload(body []byte) (any, error) {
	v, err := domain.DecodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("proxyclient: decode response: %w", err)
	}
	if obj, ok := v.(map[string]any); ok {
		if e, ok := obj["error"]; ok && e != nil {
			if m, ok := e.(map[string]any); ok {
				if msg, ok := m["message"].(string); ok && msg != "" {
					return nil, fmt.Errorf("%w: %s", ErrProxyResponse, msg)
				}
			}
			b, _ := json.Marshal(e)
			return nil, fmt.Errorf("%w: %s", ErrProxyResponse, b)
		}
	}
	return v, nil
}
