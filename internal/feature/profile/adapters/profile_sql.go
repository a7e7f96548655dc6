package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_dashboard/internal/feature/profile/domain/entity"
	"stock_dashboard/internal/feature/profile/usecase"
)

// profileSQL はGORM経由でSQLデータベースにプロフィールを保存します。
type profileSQL struct {
	db *gorm.DB
}

// Compile-time check to ensure profileSQL implements ProfileRepository.
var _ usecase.ProfileRepository = (*profileSQL)(nil)

// NewProfileSQL はprofileSQLの新しいインスタンスを生成します。
func NewProfileSQL(db *gorm.DB) *profileSQL {
	return &profileSQL{db: db}
}

// Get は保存済みのプロフィールを取得します。
func (r *profileSQL) Get(ctx context.Context) (*entity.Profile, error) {
	var m ProfileModel
	if err := r.db.WithContext(ctx).First(&m, singletonProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Save は固定IDの行をupsertし、常に1行だけを保持します。
func (r *profileSQL) Save(ctx context.Context, p entity.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		}).
		Create(ProfileModelFromEntity(p)).Error
}
