// Package dto はdashboardフィーチャーのHTTPレスポンス型を定義します。
package dto

import "stock_dashboard/internal/feature/dashboard/view"

// DashboardQuery は GET /api/dashboard のクエリパラメータです。
type DashboardQuery struct {
	Symbol    *string
	Exchange  *string
	Timeframe *string
}

// DashboardResponse はquoteパネルとチャートの表示内容です。
type DashboardResponse struct {
	Symbol    string          `json:"symbol"`
	Exchange  string          `json:"exchange"`
	Timeframe string          `json:"timeframe"`
	Quote     *view.QuoteView `json:"quote"`
	Chart     *view.ChartData `json:"chart"`
	Error     string          `json:"error,omitempty"`
	RequestID string          `json:"request_id"`
}

// ErrorResponse はクエリが不正な場合のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
