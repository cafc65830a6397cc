package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	PaymentStatus string
	UserID        *int64
	From          *time.Time
	To            *time.Time
}

// ステータス遷移は条件付きUPDATE（0行なら ErrNotFound）。
// 同時実行のverify/submitの競合はストレージ側で閉じる。
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	//order_numberの一意制約違反はそのまま返す（呼び出し側が再生成してリトライ）
	Create(ctx context.Context, order model.Order) (int64, error)

	//PENDING かつ本人の注文だけ SUBMITTED に遷移させる
	SubmitUTR(ctx context.Context, orderID int64, userID int64, utr string) error

	//PENDING/SUBMITTED だけ VERIFIED + COMPLETED に遷移させる
	MarkVerified(ctx context.Context, orderID int64, paidAt time.Time) error

	//VERIFIED 以外を FAILED + CANCELLED にする（再却下は冪等）
	MarkRejected(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
