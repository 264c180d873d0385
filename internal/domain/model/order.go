package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 終端状態（以後の変更不可）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// UserIDがnilならゲスト注文。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          *string         `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Email           string          `gorm:"type:varchar(255);not null" json:"email"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(50);not null;default:'pending'" json:"payment_status"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	OrderNotes      string          `gorm:"type:text" json:"order_notes"`
	IdempotencyKey  *string         `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
