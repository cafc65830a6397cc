package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// チェックアウト時の解決用。非公開・削除済みのIDは黙って落とす。
func (r *ProductGormRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 公開商品のみを、検索/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）かつ、削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("title ILIKE ?", like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	var products []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id desc").Limit(q.Limit).Offset(offset).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func (r *ProductGormRepository) IncrementDownloadCount(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}
