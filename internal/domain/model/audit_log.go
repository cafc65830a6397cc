package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	//支払いを確認した操作
	AuditActionVerifyPayment AuditAction = "VERIFY_PAYMENT"
	//支払いを却下した操作
	AuditActionRejectPayment AuditAction = "REJECT_PAYMENT"
)

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どこから」行ったかを残す。
// DetailJSON はアクションごとの固定スキーマ（下の Detail 構造体）をJSON化したもの。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	DetailJSON   string            `gorm:"type:text" json:"detail_json"`
	IPAddress    string            `gorm:"type:varchar(64)" json:"ip_address"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}

// VERIFY_PAYMENT の詳細
type VerifyPaymentDetail struct {
	OrderNumber string `json:"order_number"`
	UTRNumber   string `json:"utr_number"`
	TotalAmount int64  `json:"total_amount"`
}

// REJECT_PAYMENT の詳細
type RejectPaymentDetail struct {
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}
