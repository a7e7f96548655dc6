// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	dashboardinprocess "stock_dashboard/internal/feature/dashboard/adapters/inprocess"
	"stock_dashboard/internal/feature/dashboard/controller"
	dashboardhandler "stock_dashboard/internal/feature/dashboard/transport/handler"
	dashboardusecase "stock_dashboard/internal/feature/dashboard/usecase"
	proxyhandler "stock_dashboard/internal/feature/marketproxy/transport/handler"
	proxyusecase "stock_dashboard/internal/feature/marketproxy/usecase"
	"stock_dashboard/internal/platform/externalapi/marketstack"
	infrahttp "stock_dashboard/internal/platform/http"
)

// NewProxyUsecase creates the Marketstack proxy with its HTTP client.
func NewProxyUsecase(cfg marketstack.Config, debug bool) *proxyusecase.ProxyUsecase {
	if cfg.AccessKey == "" {
		slog.Warn("Marketstack access key is not set; proxy requests will fail",
			"env", marketstack.AccessKeyEnvs)
	}
	client := marketstack.NewClient(cfg.BaseURL, infrahttp.NewHTTPClient(cfg.Timeout))
	return proxyusecase.NewProxyUsecase(client, proxyusecase.Options{
		AccessKey: cfg.AccessKey,
		Timeout:   cfg.Timeout,
		Debug:     debug,
	})
}

// NewProxyHandler wires the proxy endpoint from environment configuration.
func NewProxyHandler() (*proxyhandler.ProxyHandler, *proxyusecase.ProxyUsecase) {
	hcfg := proxyhandler.LoadConfig()
	uc := NewProxyUsecase(marketstack.LoadConfig(), hcfg.Debug)
	return proxyhandler.NewProxyHandler(uc, hcfg), uc
}

// NewDashboardHandler serves the dashboard view by calling the proxy in-process.
func NewDashboardHandler(proxy dashboardinprocess.Proxy) *dashboardhandler.DashboardHandler {
	uc := dashboardusecase.NewMarketUsecase(dashboardinprocess.NewFetcher(proxy))
	return dashboardhandler.NewDashboardHandler(uc, controller.DefaultDefaults, nil)
}
