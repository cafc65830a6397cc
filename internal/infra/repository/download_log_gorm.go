package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type downloadLogGormRepository struct {
	db *gorm.DB
}

func NewDownloadLogGormRepository(db *gorm.DB) repo.DownloadLogRepository {
	return &downloadLogGormRepository{db: db}
}

func (r *downloadLogGormRepository) Create(ctx context.Context, log model.DownloadLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return err
	}
	return nil
}
