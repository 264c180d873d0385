package repository

import "context"

type InventoryRepository interface {
	// 在庫の現在値を設定（管理画面用）
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算（stock >= qty のときのみ）。
	// 足りなければ false。注文トランザクションの中から呼ぶこと。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
