package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
}

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)

	//公開中（is_active=true）の商品だけを返す。見つからないIDは黙って落とす。
	FindActiveByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	//商品単位の累計ダウンロード数を +1 する
	IncrementDownloadCount(ctx context.Context, productID int64) error
}
