// Package handler はdashboardフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"stock_dashboard/internal/feature/dashboard/controller"
	"stock_dashboard/internal/feature/dashboard/domain/entity"
	"stock_dashboard/internal/feature/dashboard/transport/http/dto"
	"stock_dashboard/internal/feature/dashboard/usecase"
	"stock_dashboard/internal/feature/dashboard/view"
	"stock_dashboard/internal/platform/http/middleware"
)

// DashboardUsecase はダッシュボードの読み込みユースケースです。
type DashboardUsecase interface {
	Load(ctx context.Context, symbol, exchange string, tf entity.Timeframe) usecase.LoadResult
}

// DashboardHandler はターミナルUIと同じ内容をJSONで返します。
type DashboardHandler struct {
	uc       DashboardUsecase
	defaults controller.Defaults
	loc      *time.Location
}

// NewDashboardHandler はDashboardHandlerの新しいインスタンスを生成します。
func NewDashboardHandler(uc DashboardUsecase, defaults controller.Defaults, loc *time.Location) *DashboardHandler {
	if defaults.Symbol == "" {
		defaults.Symbol = controller.DefaultDefaults.Symbol
	}
	if defaults.Timeframe == "" {
		defaults.Timeframe = controller.DefaultDefaults.Timeframe
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{uc: uc, defaults: defaults, loc: loc}
}

// bindQuery はクエリパラメータを読み取ります。いずれも任意です。
func bindQuery(c *gin.Context) (dto.DashboardQuery, error) {
	var q dto.DashboardQuery
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "symbol", query, &q.Symbol); err != nil {
		return q, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "exchange", query, &q.Exchange); err != nil {
		return q, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "timeframe", query, &q.Timeframe); err != nil {
		return q, err
	}
	return q, nil
}

// GetDashboard は銘柄のquoteとチャートデータを返します。
//
// エンドポイント例:
// GET /api/dashboard?symbol=AAPL&timeframe=1M
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	q, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	symbol, exchange, tf := h.defaults.Symbol, h.defaults.Exchange, h.defaults.Timeframe
	if q.Symbol != nil && strings.TrimSpace(*q.Symbol) != "" {
		symbol = strings.ToUpper(strings.TrimSpace(*q.Symbol))
	}
	if q.Exchange != nil {
		exchange = strings.TrimSpace(*q.Exchange)
	}
	if q.Timeframe != nil && *q.Timeframe != "" {
		tf = entity.Timeframe(strings.ToUpper(*q.Timeframe))
	}

	res := h.uc.Load(c.Request.Context(), symbol, exchange, tf)

	out := dto.DashboardResponse{
		Symbol:    res.Symbol,
		Exchange:  res.Exchange,
		Timeframe: string(res.Timeframe),
		Error:     res.Message,
		RequestID: middleware.GetRequestID(c),
	}
	if res.Quote != nil {
		qv := view.RenderQuote(res.Quote)
		out.Quote = &qv
	}
	if len(res.Series) > 0 {
		cd := view.BuildChart(res.Series, res.Timeframe, h.loc)
		out.Chart = &cd
	}

	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, out)
}
