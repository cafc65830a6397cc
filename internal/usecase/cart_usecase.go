package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はRedis（TTL付き）に置き、商品情報は都度カタログから引く。
type CartUsecase struct {
	store       repo.CartStore
	productRepo repo.ProductRepository
}

func NewCartUsecase(store repo.CartStore, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{store: store, productRepo: productRepo}
}

type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

// GetCart はカート取得（無ければ空を返す）。
// カートに入れた後で非公開になった商品は表示しない（チェックアウト時にも落ちる）。
func (u *CartUsecase) GetCart(ctx context.Context, owner repo.CartOwner) (CartResponse, error) {
	if owner.ID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid cart owner")
	}

	ids, err := u.store.Get(ctx, owner)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	return u.buildCartResponse(ctx, ids)
}

// AddToCart はカートに追加（デジタル商品なので数量は常に1、重複は409）。
func (u *CartUsecase) AddToCart(ctx context.Context, owner repo.CartOwner, productID int64) (CartResponse, error) {
	if owner.ID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid cart owner")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	if _, err := u.store.Add(ctx, owner, productID); err != nil {
		if errors.Is(err, repo.ErrDuplicateItem) {
			return CartResponse{}, NewHTTPError(http.StatusConflict, "already in cart")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	ids, err := u.store.Get(ctx, owner)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return u.buildCartResponse(ctx, ids)
}

// RemoveFromCart は冪等。無い商品を消しても何も起きない。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, owner repo.CartOwner, productID int64) (CartResponse, error) {
	if owner.ID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid cart owner")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if _, err := u.store.Remove(ctx, owner, productID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	ids, err := u.store.Get(ctx, owner)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return u.buildCartResponse(ctx, ids)
}

func (u *CartUsecase) ClearCart(ctx context.Context, owner repo.CartOwner) error {
	if owner.ID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid cart owner")
	}
	if err := u.store.Clear(ctx, owner); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, ids []int64) (CartResponse, error) {
	if len(ids) == 0 {
		return CartResponse{Items: []CartItemResponse{}}, nil
	}

	products, err := u.productRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(products))
	var total int64 = 0

	for _, p := range products {
		respItems = append(respItems, CartItemResponse{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
		})
		total += p.Price
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
