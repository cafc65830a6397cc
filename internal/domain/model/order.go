package model

import "time"

// 支払いステータス（VERIFIED / FAILED は終端）
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSubmitted PaymentStatus = "SUBMITTED"
	PaymentStatusVerified  PaymentStatus = "VERIFIED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// 注文ステータス（支払いステータスに追従する）
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// TotalAmount は作成時点の明細スナップショット合計（paise）。以後不変。
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string        `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	Email         string        `gorm:"type:varchar(255);not null" json:"email"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	UTRNumber     *string       `gorm:"type:varchar(50)" json:"utr_number,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
