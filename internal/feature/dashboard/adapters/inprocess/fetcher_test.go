package inprocess_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_dashboard/internal/feature/dashboard/adapters/inprocess"
	"stock_dashboard/internal/feature/marketproxy/domain"
	proxyusecase "stock_dashboard/internal/feature/marketproxy/usecase"
)

type upstreamCall struct {
	Endpoint string
	Params   url.Values
}

// mockUpstream はendpointごとのレスポンスを返す上流のモックです。
type mockUpstream struct {
	Responses map[string]*domain.UpstreamResponse
	Calls     []upstreamCall
}

func (m *mockUpstream) Get(_ context.Context, endpoint string, params url.Values) (*domain.UpstreamResponse, error) {
	m.Calls = append(m.Calls, upstreamCall{endpoint, params})
	return m.Responses[endpoint], nil
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()
	up := &mockUpstream{Responses: map[string]*domain.UpstreamResponse{
		"eod": {Status: http.StatusOK, Body: []byte(`{"data":[{"close":1}]}`)},
	}}
	f := inprocess.NewFetcher(proxyusecase.NewProxyUsecase(up, proxyusecase.Options{AccessKey: "k"}))
	f.RequestID = func() string { return "req-1" }

	v, err := f.Fetch(context.Background(), "eod", url.Values{"symbols": {"AAPL"}})

	require.NoError(t, err)
	assert.Len(t, v.(map[string]any)["data"], 1)
	require.Len(t, up.Calls, 1)
	assert.Equal(t, url.Values{"symbols": {"AAPL"}, "access_key": {"k"}}, up.Calls[0].Params)
}

func TestFetcher_FallsBackOnRestrictedIntraday(t *testing.T) {
	t.Parallel()
	up := &mockUpstream{Responses: map[string]*domain.UpstreamResponse{
		"intraday/latest": {Status: http.StatusForbidden, Body: []byte(`{"error":{"code":"function_access_restricted"}}`)},
		"eod/latest":      {Status: http.StatusOK, Body: []byte(`{"data":[{"symbol":"AAPL"}]}`)},
	}}
	f := inprocess.NewFetcher(proxyusecase.NewProxyUsecase(up, proxyusecase.Options{AccessKey: "k"}))

	v, err := f.Fetch(context.Background(), "intraday/latest", url.Values{"symbols": {"AAPL"}})

	require.NoError(t, err)
	meta := v.(map[string]any)["meta"].(map[string]any)
	assert.Equal(t, "intraday/latest", meta["fell_back_from"])
	assert.Len(t, up.Calls, 2)
}

func TestFetcher_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		up := &mockUpstream{}
		f := inprocess.NewFetcher(proxyusecase.NewProxyUsecase(up, proxyusecase.Options{}))

		_, err := f.Fetch(context.Background(), "eod", nil)

		assert.ErrorIs(t, err, domain.ErrMissingAccessKey)
		assert.Empty(t, up.Calls)
	})

	t.Run("upstream error", func(t *testing.T) {
		t.Parallel()
		up := &mockUpstream{Responses: map[string]*domain.UpstreamResponse{
			"eod": {Status: http.StatusUnauthorized, Body: []byte(`{"error":{"code":"invalid_access_key"}}`)},
		}}
		f := inprocess.NewFetcher(proxyusecase.NewProxyUsecase(up, proxyusecase.Options{AccessKey: "k"}))

		_, err := f.Fetch(context.Background(), "eod", nil)

		var pe *domain.ProxyError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusUnauthorized, pe.Status)
	})
}
