package repository

import (
	"context"

	"techmart/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	// 商品削除ガード用（参照している明細の件数）
	CountByProductID(ctx context.Context, productID int64) (int64, error)
}
