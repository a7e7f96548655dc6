package adapters

import (
	"time"

	"stock_dashboard/internal/feature/profile/domain/entity"
)

// singletonProfileID は唯一のプロフィール行の主キーです。
const singletonProfileID = 1

// ProfileModel はプロフィールのGORMモデルです。
type ProfileModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null"`
	UpdatedAt time.Time
}

// TableName はテーブル名を返します。
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToEntity はモデルをエンティティに変換します。
func (m *ProfileModel) ToEntity() *entity.Profile {
	return &entity.Profile{Name: m.Name, Email: m.Email}
}

// ProfileModelFromEntity はエンティティから保存用モデルを作ります。
func ProfileModelFromEntity(p entity.Profile) *ProfileModel {
	return &ProfileModel{ID: singletonProfileID, Name: p.Name, Email: p.Email}
}
