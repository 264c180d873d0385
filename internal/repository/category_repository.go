package repository

import (
	"context"

	"techmart/internal/domain/model"
)

type CategoryListQuery struct {
	Locale string
	Search string
}

type CategoryRepository interface {
	List(ctx context.Context, q CategoryListQuery) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	// 削除時、参照している商品のcategory_idはNULLに戻す
	Delete(ctx context.Context, id int64) error
}
