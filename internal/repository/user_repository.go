package repository

import (
	"context"

	"techmart/internal/domain/model"
)

type UserListFilter struct {
	Role  string
	Page  int
	Limit int
}

// ユーザー行の作成は外部IdP連携側の責務なのでここには無い。
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (model.User, error)
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	UpdateRole(ctx context.Context, userID string, role model.Role) error
}
