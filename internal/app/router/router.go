package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	dashboardhandler "stock_dashboard/internal/feature/dashboard/transport/handler"
	proxyhandler "stock_dashboard/internal/feature/marketproxy/transport/handler"
	profilehandler "stock_dashboard/internal/feature/profile/transport/handler"
	"stock_dashboard/internal/platform/http/handler"
	"stock_dashboard/internal/platform/http/middleware"
)

// ProxyPaths はプロキシを公開するパスです。旧来のNetlify Functionsのパスも残します。
var ProxyPaths = []string{"/api/marketstack", "/.netlify/functions/marketstack"}

func NewRouter(proxy *proxyhandler.ProxyHandler, dashboard *dashboardhandler.DashboardHandler,
	profile *profilehandler.ProfileHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(), middleware.RequestID())

	// 導通確認用
	r.Any("/healthz", handler.Health)

	// CORSは gin-contrib/cors、メソッド判定と405はハンドラー側
	proxyGroup := r.Group("", proxyhandler.PreflightCache(), cors.New(proxyhandler.CORSConfig(proxy.Config())))
	for _, p := range ProxyPaths {
		proxyGroup.Any(p, proxy.Handle)
	}
	r.GET("/api/env-check", proxy.EnvCheck)

	r.GET("/api/dashboard", dashboard.GetDashboard)

	r.GET("/api/profile", profile.GetProfile)
	r.PUT("/api/profile", profile.SaveProfile)

	return r
}
