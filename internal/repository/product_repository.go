package repository

import (
	"context"
	"errors"

	"techmart/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 公開一覧の検索条件
type ProductListQuery struct {
	Locale       string
	Search       string
	CategoryID   *int64
	FeaturedOnly bool
	Limit        int
}

// 商品の永続化（保存・取得）だけを約束。
// 在庫の増減はInventoryRepository側。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Deactivate(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}
