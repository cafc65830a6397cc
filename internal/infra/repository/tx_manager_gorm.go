package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	products     repo.ProductRepository
	downloadLogs repo.DownloadLogRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository             { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }
func (r *txReposGorm) DownloadLogs() repo.DownloadLogRepository { return r.downloadLogs }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:       NewOrderGormRepository(tx),
			orderItems:   NewOrderItemGormRepository(tx),
			products:     NewProductGormRepository(tx),
			downloadLogs: NewDownloadLogGormRepository(tx),
			auditLogs:    NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
