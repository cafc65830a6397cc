package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/storage"

	"go.uber.org/zap"
)

// 署名URLの有効期間
const signedURLTTL = time.Hour

type DownloadUsecase struct {
	tx          repo.TransactionManager
	store       storage.Store
	itemRepo    repo.OrderItemRepository
	productRepo repo.ProductRepository
	logRepo     repo.DownloadLogRepository
	lg          *zap.Logger
}

func NewDownloadUsecase(
	tx repo.TransactionManager,
	store storage.Store,
	itemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
	logRepo repo.DownloadLogRepository,
	lg *zap.Logger,
) *DownloadUsecase {
	return &DownloadUsecase{
		tx:          tx,
		store:       store,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		logRepo:     logRepo,
		lg:          lg,
	}
}

type DownloadOutput struct {
	DownloadURL        string `json:"download_url"`
	RemainingDownloads int64  `json:"remaining_downloads"`
}

type DownloadRequestMeta struct {
	IPAddress string
	UserAgent string
}

// RequestDownload はダウンロード権を検査して、1時間有効の署名URLを発行する。
//
// 順序が大事：カウンタの条件付き+1（count < limit かつ期限内のみ成功）が
// コミットされてからURLを作る。逆にすると同時リクエストで上限を超えられる。
// 監査ログと商品カウンタはベストエフォート（失敗してもURLは返す）。
func (u *DownloadUsecase) RequestDownload(ctx context.Context, userID int64, orderItemID int64, meta DownloadRequestMeta) (DownloadOutput, error) {
	if userID <= 0 {
		return DownloadOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderItemID <= 0 {
		return DownloadOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	now := time.Now()
	var item model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		it, err := r.OrderItems().FindByID(ctx, orderItemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, it.OrderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//他人の明細・未確認の注文は「存在しない扱い」
		if o.UserID != userID || o.PaymentStatus != model.PaymentStatusVerified {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		//UX用にエラーを分けて返す（どれも結果はダウンロード不可）
		if it.DownloadCount >= it.DownloadLimit {
			return NewHTTPError(http.StatusForbidden, "download limit reached")
		}
		if it.ExpiresAt == nil {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if now.After(*it.ExpiresAt) {
			return NewHTTPError(http.StatusForbidden, "download link expired")
		}

		//ここが唯一の採番ポイント。0行なら同時リクエストに負けている。
		if err := r.OrderItems().IncrementDownloadCount(ctx, orderItemID, now); err != nil {
			if err == repo.ErrNotFound {
				if now.After(*it.ExpiresAt) {
					return NewHTTPError(http.StatusForbidden, "download link expired")
				}
				return NewHTTPError(http.StatusForbidden, "download limit reached")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		it.DownloadCount++
		item = it
		return nil
	})
	if err != nil {
		return DownloadOutput{}, err
	}

	//カウンタ確定後にだけURLを作る
	signedURL, err := u.store.SignURL(item.FileRefSnapshot, signedURLTTL)
	if err != nil {
		u.lg.Error("failed to sign download url",
			zap.Int64("order_item_id", orderItemID), zap.Error(err))
		return DownloadOutput{}, NewHTTPError(http.StatusInternalServerError, "could not sign download url")
	}

	//以降はベストエフォート。失敗してもレスポンスは返す。
	if err := u.logRepo.Create(ctx, model.DownloadLog{
		UserID:      userID,
		OrderItemID: item.ID,
		ProductID:   item.ProductID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		CreatedAt:   now,
	}); err != nil {
		u.lg.Warn("failed to append download log",
			zap.Int64("order_item_id", item.ID), zap.Error(err))
	}
	if err := u.productRepo.IncrementDownloadCount(ctx, item.ProductID); err != nil {
		u.lg.Warn("failed to bump product download counter",
			zap.Int64("product_id", item.ProductID), zap.Error(err))
	}
	if err := u.itemRepo.CacheDownloadURL(ctx, item.ID, signedURL); err != nil {
		u.lg.Warn("failed to cache download url",
			zap.Int64("order_item_id", item.ID), zap.Error(err))
	}

	return DownloadOutput{
		DownloadURL:        signedURL,
		RemainingDownloads: item.DownloadLimit - item.DownloadCount,
	}, nil
}

type LibraryItemOutput struct {
	OrderItemID        int64      `json:"order_item_id"`
	OrderID            int64      `json:"order_id"`
	ProductID          int64      `json:"product_id"`
	Title              string     `json:"title"`
	RemainingDownloads int64      `json:"remaining_downloads"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}

// ListMyDownloads は支払い確認済みの明細（＝マイライブラリ）を返す。
// 期限切れ・上限到達のものも表示はする（残数0になるだけ）。
func (u *DownloadUsecase) ListMyDownloads(ctx context.Context, userID int64) ([]LibraryItemOutput, error) {
	if userID <= 0 {
		return []LibraryItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.itemRepo.ListEntitledByUserID(ctx, userID)
	if err != nil {
		return []LibraryItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]LibraryItemOutput, 0, len(items))
	for _, it := range items {
		remaining := it.DownloadLimit - it.DownloadCount
		if remaining < 0 {
			remaining = 0
		}
		if it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt) {
			remaining = 0
		}
		outs = append(outs, LibraryItemOutput{
			OrderItemID:        it.ID,
			OrderID:            it.OrderID,
			ProductID:          it.ProductID,
			Title:              it.ProductTitleSnapshot,
			RemainingDownloads: remaining,
			ExpiresAt:          it.ExpiresAt,
		})
	}
	return outs, nil
}
