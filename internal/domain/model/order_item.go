package model

import "time"

// 注文の明細。商品タイトル/価格/ファイル参照は作成時点のスナップショット
// （後から商品が編集・削除されても過去の注文は変わらない）。
// ExpiresAt は支払い確認時にセットされるまで nil（ダウンロード不可）。
type OrderItem struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64      `gorm:"not null;index" json:"order_id"`
	ProductID            int64      `gorm:"not null;index" json:"product_id"`
	ProductTitleSnapshot string     `gorm:"type:varchar(255);not null" json:"product_title_snapshot"`
	ProductPriceSnapshot int64      `gorm:"not null" json:"product_price_snapshot"`
	FileRefSnapshot      string     `gorm:"type:varchar(512);not null" json:"-"`
	DownloadCount        int64      `gorm:"not null;default:0" json:"download_count"`
	DownloadLimit        int64      `gorm:"not null" json:"download_limit"`
	ExpiresAt            *time.Time `gorm:"index" json:"expires_at,omitempty"`
	LastDownloadURL      *string    `gorm:"type:text" json:"-"`
	CreatedAt            time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 明細1件あたりのダウンロード上限（作成時に固定）
const DefaultDownloadLimit int64 = 5
