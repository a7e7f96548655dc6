package di

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	profileadapters "stock_dashboard/internal/feature/profile/adapters"
	"stock_dashboard/internal/feature/profile/adapters/emailjs"
	"stock_dashboard/internal/feature/profile/usecase"
)

// NewProfileRepository creates a ProfileRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewProfileRepository(rdb *redis.Client, db *gorm.DB) usecase.ProfileRepository {
	if rdb != nil {
		return profileadapters.NewProfileRedis(rdb, "stock_dashboard")
	}
	return profileadapters.NewProfileSQL(db)
}

// NewMailer returns the EmailJS mailer, or nil when it is not configured.
func NewMailer(cfg emailjs.Config, client *http.Client) usecase.Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return emailjs.NewClient(cfg, client)
}
