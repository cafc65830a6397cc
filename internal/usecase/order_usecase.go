package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/upi"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 注文番号の衝突（一意制約違反）時に番号を作り直して試す回数
const orderNumberMaxAttempts = 3

type OrderUsecase struct {
	tx         repo.TransactionManager
	cartStore  repo.CartStore
	upiBuilder *upi.Builder
	lg         *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, cartStore repo.CartStore, upiBuilder *upi.Builder, lg *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, cartStore: cartStore, upiBuilder: upiBuilder, lg: lg}
}

type OrderItemOutput struct {
	ID            int64      `json:"id"`
	ProductID     int64      `json:"product_id"`
	Title         string     `json:"title"`
	Price         int64      `json:"price"`
	DownloadCount int64      `json:"download_count"`
	DownloadLimit int64      `json:"download_limit"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"order_number"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	TotalAmount   int64             `json:"total_amount"`
	UTRNumber     *string           `json:"utr_number,omitempty"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

type CreateOrderOutput struct {
	Order   OrderOutput         `json:"order"`
	Payment *upi.PaymentRequest `json:"payment,omitempty"`
}

// CreateOrder はユーザーカートをチェックアウトして注文＋支払いリクエストを作る。
// カートのクリアは注文が確定した後だけ（失敗したらカートは残る）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, email string) (CreateOrderOutput, error) {
	if userID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(email) == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: fmt.Sprintf("%d", userID)}

	ids, err := u.cartStore.Get(ctx, owner)
	if err != nil {
		return CreateOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	if len(ids) == 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	var created model.Order
	var createdItems []model.OrderItem

	//注文番号の衝突は番号を作り直してトランザクションごとやり直す
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		orderNumber := newOrderNumber(time.Now())

		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			//カートのIDを現在公開中の商品に解決する
			products, err := r.Products().FindActiveByIDs(ctx, ids)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			//全部カート追加後に非公開になっていた場合
			if len(products) == 0 {
				return NewHTTPError(http.StatusBadRequest, "no valid products")
			}

			//スナップショット（価格はチェックアウト時点のもの）
			now := time.Now()
			items := make([]model.OrderItem, 0, len(products))
			var total int64 = 0
			for _, p := range products {
				items = append(items, model.OrderItem{
					ProductID:            p.ID,
					ProductTitleSnapshot: p.Title,
					ProductPriceSnapshot: p.Price,
					FileRefSnapshot:      p.FileRef,
					DownloadCount:        0,
					DownloadLimit:        model.DefaultDownloadLimit,
					CreatedAt:            now,
				})
				total += p.Price
			}

			orderID, err := r.Orders().Create(ctx, model.Order{
				OrderNumber:   orderNumber,
				UserID:        userID,
				Email:         email,
				TotalAmount:   total,
				PaymentStatus: model.PaymentStatusPending,
				Status:        model.OrderStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			if err != nil {
				//番号衝突は外のループでリトライ
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for i := range items {
				items[i].OrderID = orderID
			}
			created = model.Order{
				ID:            orderID,
				OrderNumber:   orderNumber,
				UserID:        userID,
				Email:         email,
				TotalAmount:   total,
				PaymentStatus: model.PaymentStatusPending,
				Status:        model.OrderStatusPending,
				CreatedAt:     now,
			}
			createdItems = items
			return nil
		})

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			u.lg.Warn("order number collision, retrying",
				zap.String("order_number", orderNumber), zap.Int("attempt", attempt+1))
			continue
		}
		break
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return CreateOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "could not allocate order number")
	}
	if err != nil {
		return CreateOrderOutput{}, err
	}

	//注文確定後にだけカートを消す。消し損ねても注文は有効なのでログだけ残す。
	if err := u.cartStore.Clear(ctx, owner); err != nil {
		u.lg.Warn("failed to clear cart after checkout",
			zap.Int64("user_id", userID), zap.Error(err))
	}

	//支払いリクエスト生成はクリティカルパス（失敗したら500）
	payment, err := u.upiBuilder.Build(created.TotalAmount, created.OrderNumber)
	if err != nil {
		u.lg.Error("failed to build payment request",
			zap.String("order_number", created.OrderNumber), zap.Error(err))
		return CreateOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "could not build payment request")
	}

	return CreateOrderOutput{
		Order:   toOrderOutput(created, createdItems),
		Payment: &payment,
	}, nil
}

type SubmitUTRInput struct {
	UTRNumber string
}

// SubmitUTR は支払い参照番号（UTR）を受けて PENDING → SUBMITTED に遷移させる。
// 「無い」「他人の注文」「PENDING以外」は全部404で返す（存在を漏らさない）。
func (u *OrderUsecase) SubmitUTR(ctx context.Context, userID int64, orderID int64, in SubmitUTRInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	utr := strings.TrimSpace(in.UTRNumber)
	if len(utr) < 5 || len(utr) > 50 {
		return NewHTTPError(http.StatusBadRequest, "invalid utr_number")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().SubmitUTR(ctx, orderID, userID, utr)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetMyOrderDetail は注文詳細を返す。まだ PENDING なら支払いリクエストも作り直して付ける。
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (CreateOrderOutput, error) {
	if userID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out CreateOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = CreateOrderOutput{Order: toOrderOutput(o, items)}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, err
	}

	//支払い待ちの間は何度でも再生成できる（純関数）
	if out.Order.PaymentStatus == string(model.PaymentStatusPending) {
		payment, err := u.upiBuilder.Build(out.Order.TotalAmount, out.Order.OrderNumber)
		if err != nil {
			return CreateOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "could not build payment request")
		}
		out.Payment = &payment
	}

	return out, nil
}

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ORD-YYYYMM-XXXXXX 形式。一意性は確率的なので、保存時の一意制約＋リトライで担保する。
func newOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("200601"), string(suffix))
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Title:         it.ProductTitleSnapshot,
			Price:         it.ProductPriceSnapshot,
			DownloadCount: it.DownloadCount,
			DownloadLimit: it.DownloadLimit,
			ExpiresAt:     it.ExpiresAt,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		UTRNumber:     o.UTRNumber,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
