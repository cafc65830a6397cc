package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)

	//支払い確認時にエンタイトルメントを有効化する
	SetExpiry(ctx context.Context, itemID int64, expiresAt time.Time) error

	//download_count を条件付きで +1 する（count < limit かつ期限内のみ）。
	//条件を満たさなければ ErrNotFound（read-modify-writeにしないこと）。
	IncrementDownloadCount(ctx context.Context, itemID int64, now time.Time) error

	//直近の署名URLをキャッシュする（ベストエフォート）
	CacheDownloadURL(ctx context.Context, itemID int64, url string) error

	//VERIFIED済み注文の明細だけを返す（マイライブラリ用）
	ListEntitledByUserID(ctx context.Context, userID int64) ([]model.OrderItem, error)
}
