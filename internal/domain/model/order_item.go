package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細
// 価格・商品名は購入時点のスナップショット。後から商品を編集しても変わらない。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
