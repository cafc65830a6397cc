package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	//一意制約違反（order_number衝突）は gorm.ErrDuplicatedKey のまま返す
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

// PENDING かつ本人の注文だけ SUBMITTED にする。
// 「無い」「他人の注文」「PENDING以外」はすべて0行＝ErrNotFound（存在を漏らさない）。
func (r *OrderGormRepository) SubmitUTR(ctx context.Context, orderID int64, userID int64, utr string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND user_id = ? AND payment_status = ?", orderID, userID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"utr_number":     utr,
			"payment_status": model.PaymentStatusSubmitted,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 2本のverifyが同時に走っても1本しか成功しないよう、遷移条件をWHEREに入れる。
func (r *OrderGormRepository) MarkVerified(ctx context.Context, orderID int64, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", orderID,
			[]model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusSubmitted}).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusVerified,
			"status":         model.OrderStatusCompleted,
			"paid_at":        paidAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// VERIFIED だけは守る。FAILED→FAILED は許す（再却下は冪等）。
func (r *OrderGormRepository) MarkRejected(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentStatusVerified).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"status":         model.OrderStatusCancelled,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//payment_status 絞り込み
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}
