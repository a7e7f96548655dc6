package marketstack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"stock_dashboard/internal/feature/marketproxy/domain"
	"stock_dashboard/internal/feature/marketproxy/usecase"
)

// Client issues GET requests against the Marketstack API.
type Client struct {
	baseURL string
	client  *http.Client
	maxBody int64
}

// Client must satisfy the proxy's upstream port.
var _ usecase.UpstreamClient = (*Client)(nil)

// NewClient creates a Client for baseURL using the given HTTP client.
func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client, maxBody: domain.MaxBodyBytes}
}

// WithMaxBody overrides the body size limit. Larger bodies fail instead of
// being truncated.
func (c *Client) WithMaxBody(n int64) *Client {
	c.maxBody = n
	return c
}

// BuildURL returns {base}/{endpoint}?{params}.
func (c *Client) BuildURL(endpoint string, params url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Get performs the call and returns the status and raw body. Non-2xx
// statuses are not errors here; the caller decides how to relay them.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*domain.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(endpoint, params), nil)
	if err != nil {
		return nil, fmt.Errorf("marketstack: build request: %w", err)
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
		return nil, fmt.Errorf("marketstack: read %s: %w", endpoint, err)
	}
	return &domain.UpstreamResponse{Status: res.StatusCode, Body: body}, nil
}
