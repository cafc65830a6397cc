package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

func (r *OrderItemGormRepository) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	var it model.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	return it, nil
}

func (r *OrderItemGormRepository) SetExpiry(ctx context.Context, itemID int64, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("expires_at", expiresAt)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 単発のUPDATEで「+1」と上限/期限チェックを同時にやる。
// 2つの同時ダウンロードが両方 count < limit を見てしまう競合はここで閉じる。
func (r *OrderItemGormRepository) IncrementDownloadCount(ctx context.Context, itemID int64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ? AND download_count < download_limit AND expires_at IS NOT NULL AND expires_at > ?", itemID, now).
		Update("download_count", gorm.Expr("download_count + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderItemGormRepository) CacheDownloadURL(ctx context.Context, itemID int64, url string) error {
	return r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("last_download_url", url).Error
}

func (r *OrderItemGormRepository) ListEntitledByUserID(ctx context.Context, userID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.payment_status = ?", userID, model.PaymentStatusVerified).
		Order("order_items.id desc").
		Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}
