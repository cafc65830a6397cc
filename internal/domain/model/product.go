package model

import (
	"time"

	"gorm.io/gorm"
)

// デジタル商品。FileRef はブロブストア上のファイルキー。
// DownloadCount は商品単位の累計ダウンロード数（ベストエフォート更新）。
type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"`
	FileRef       string         `gorm:"type:varchar(512);not null" json:"-"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	DownloadCount int64          `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
