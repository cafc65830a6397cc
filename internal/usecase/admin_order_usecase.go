package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 支払い確認から7日でダウンロード期限が切れる
const entitlementTTL = 7 * 24 * time.Hour

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	itemRepo  repo.OrderItemRepository
	auditRepo repo.AuditLogRepository
	lg        *zap.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	itemRepo repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
	lg *zap.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, itemRepo: itemRepo, auditRepo: auditRepo, lg: lg}
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
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

// 監査ログ一覧（管理者）。追記専用のレコードをそのまま返す。
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

// VerifyPayment は支払いを確認済みにして、全明細のダウンロード権を有効化する。
// 注文のVERIFIED化はトランザクションで確定し、有効化はその後に行う
// （一部失敗してもVERIFIEDは取り消さず、部分失敗として報告する）。
func (u *AdminOrderUsecase) VerifyPayment(ctx context.Context, actorAdminUserID int64, orderID int64, actorIP string) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	paidAt := time.Now()
	var verified model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().MarkVerified(ctx, orderID, paidAt)
		if err == repo.ErrNotFound {
			//0行だった理由を読み直して振り分ける
			o, ferr := r.Orders().FindByID(ctx, orderID)
			if ferr == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if ferr != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if o.PaymentStatus == model.PaymentStatusVerified {
				return NewHTTPError(http.StatusConflict, "already verified")
			}
			return NewHTTPError(http.StatusConflict, "order already rejected")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		verified = o

		//★監査ログ（VERIFY_PAYMENT）。遷移と同じトランザクションで書く
		//（コミット失敗時に監査だけ残らないように）。
		utr := ""
		if o.UTRNumber != nil {
			utr = *o.UTRNumber
		}
		detail, _ := json.Marshal(model.VerifyPaymentDetail{
			OrderNumber: o.OrderNumber,
			UTRNumber:   utr,
			TotalAmount: o.TotalAmount,
		})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionVerifyPayment,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			DetailJSON:   string(detail),
			IPAddress:    actorIP,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		return err
	}

	//有効化はVERIFIED確定後。1件の失敗で他の明細を巻き込まない。
	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		u.lg.Error("verified but could not list items for activation",
			zap.Int64("order_id", orderID), zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, "entitlement activation incomplete")
	}

	expiresAt := paidAt.Add(entitlementTTL)
	failed := 0
	for _, it := range items {
		if err := u.itemRepo.SetExpiry(ctx, it.ID, expiresAt); err != nil {
			failed++
			u.lg.Error("failed to activate entitlement",
				zap.Int64("order_id", orderID),
				zap.Int64("order_item_id", it.ID),
				zap.Error(err))
		}
	}
	if failed > 0 {
		u.lg.Error("entitlement activation partially failed",
			zap.Int64("order_id", orderID),
			zap.String("order_number", verified.OrderNumber),
			zap.Int("failed", failed),
			zap.Int("total", len(items)))
		return NewHTTPError(http.StatusInternalServerError, "entitlement activation incomplete")
	}

	return nil
}

type RejectPaymentInput struct {
	Reason string
}

// RejectPayment は支払いを却下して注文をキャンセルする。再実行は冪等
// （同じ終端状態のまま、監査ログだけ増える）。VERIFIED済みは却下できない。
func (u *AdminOrderUsecase) RejectPayment(ctx context.Context, actorAdminUserID int64, orderID int64, in RejectPaymentInput, actorIP string) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	reason := strings.TrimSpace(in.Reason)
	if len(reason) > 500 {
		return NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().MarkRejected(ctx, orderID)
		if err == repo.ErrNotFound {
			o, ferr := r.Orders().FindByID(ctx, orderID)
			if ferr == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if ferr != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if o.PaymentStatus == model.PaymentStatusVerified {
				return NewHTTPError(http.StatusConflict, "cannot reject verified order")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//★監査ログ（REJECT_PAYMENT）。遷移と同じトランザクションで書く。
		detail, _ := json.Marshal(model.RejectPaymentDetail{
			OrderNumber: o.OrderNumber,
			Reason:      reason,
		})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionRejectPayment,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			DetailJSON:   string(detail),
			IPAddress:    actorIP,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}
