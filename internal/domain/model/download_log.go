package model

import "time"

// ダウンロード成功ごとに1件追記する監査レコード。更新・削除はしない。
type DownloadLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	OrderItemID int64     `gorm:"not null;index" json:"order_item_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	IPAddress   string    `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent   string    `gorm:"type:varchar(512)" json:"user_agent"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}
