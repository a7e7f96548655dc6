package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_dashboard/internal/app/di"
	"stock_dashboard/internal/app/router"
	profileadapters "stock_dashboard/internal/feature/profile/adapters"
	"stock_dashboard/internal/feature/profile/adapters/emailjs"
	profilehandler "stock_dashboard/internal/feature/profile/transport/handler"
	profileusecase "stock_dashboard/internal/feature/profile/usecase"
	"stock_dashboard/internal/platform/db"
	infrahttp "stock_dashboard/internal/platform/http"
	"stock_dashboard/internal/platform/logger"
	infraredis "stock_dashboard/internal/platform/redis"
)

func main() {
	// .env は無くてもよい
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("[WARN] failed to load .env:", err)
	}
	logger.SetDefault(logger.NewLogger(os.Getenv("LOG_LEVEL"), os.Stdout))

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(infraredis.LoadConfig()); err != nil {
		log.Println("[WARN] Redis unavailable. Profile is stored in the SQL database.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Redisが無い場合のみDBに接続する
	var gdb *gorm.DB
	if rdb == nil {
		var err error
		gdb, err = db.OpenDB(db.LoadConfigFromEnv(), &profileadapters.ProfileModel{})
		if err != nil {
			log.Fatal(err)
		}
	}

	// Proxy / Dashboard
	proxyH, proxyUC := di.NewProxyHandler()
	dashboardH := di.NewDashboardHandler(proxyUC)

	// Profile
	emailCfg := emailjs.LoadConfig()
	mailer := di.NewMailer(emailCfg, infrahttp.NewHTTPClient(profileusecase.DefaultEmailTimeout))
	if mailer == nil {
		log.Println("[WARN] EMAILJS_SERVICE_ID / EMAILJS_TEMPLATE_ID / EMAILJS_PUBLIC_KEY are not set. Welcome emails are disabled.")
	}
	profileUC := profileusecase.NewProfileUsecase(di.NewProfileRepository(rdb, gdb), mailer, profileusecase.DefaultEmailTimeout)
	profileH := profilehandler.NewProfileHandler(profileUC, 5*time.Second)

	r := router.NewRouter(proxyH, dashboardH, profileH)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
