package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stock_dashboard/internal/app/di"
	"stock_dashboard/internal/feature/dashboard/adapters/proxyclient"
	"stock_dashboard/internal/feature/dashboard/controller"
	"stock_dashboard/internal/feature/dashboard/domain/entity"
	"stock_dashboard/internal/feature/dashboard/transport/tui"
	"stock_dashboard/internal/feature/dashboard/usecase"
	profileadapters "stock_dashboard/internal/feature/profile/adapters"
	"stock_dashboard/internal/feature/profile/adapters/emailjs"
	profileusecase "stock_dashboard/internal/feature/profile/usecase"
	"stock_dashboard/internal/platform/config"
	infrahttp "stock_dashboard/internal/platform/http"
	"stock_dashboard/internal/platform/logger"
)

func main() {
	path := flag.String("config", "configs/dashboard.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	loc, err := cfg.LoadLocation()
	if err != nil {
		log.Fatalf("load location %q: %v", cfg.Dashboard.Location, err)
	}

	// TUIが端末を使うためログはファイルへ
	var w io.Writer = io.Discard
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		w = f
	}
	logger.SetDefault(logger.NewLogger(cfg.Logging.Level, w))

	// Market data
	fetcher := proxyclient.NewClient(cfg.Proxy.URL, infrahttp.NewHTTPClient(cfg.Proxy.Timeout()))
	market := usecase.NewMarketUsecase(fetcher).WithFetchTimeout(cfg.Proxy.Timeout())

	// Profile
	mailer := di.NewMailer(emailjs.Config{
		BaseURL:    cfg.EmailJS.BaseURL,
		ServiceID:  cfg.EmailJS.ServiceID,
		TemplateID: cfg.EmailJS.TemplateID,
		PublicKey:  cfg.EmailJS.PublicKey,
		PrivateKey: cfg.EmailJS.PrivateKey,
	}, infrahttp.NewHTTPClient(profileusecase.DefaultEmailTimeout))
	profiles := profileusecase.NewProfileUsecase(
		profileadapters.NewProfileFile(cfg.Profile.Dir), mailer, profileusecase.DefaultEmailTimeout)

	ctrl := controller.New(market, tui.Renderer{}, profiles, controller.Defaults{
		Symbol:    cfg.Dashboard.Symbol,
		Exchange:  cfg.Dashboard.Exchange,
		Timeframe: entity.Timeframe(cfg.Dashboard.Timeframe),
	}, loc)

	model := tui.NewModel(context.Background(), ctrl)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard:", err)
		os.Exit(1)
	}
}
