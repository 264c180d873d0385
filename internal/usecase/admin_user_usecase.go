package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"
)

type AdminUserUsecase struct {
	tx repo.TransactionManager
}

func NewAdminUserUsecase(tx repo.TransactionManager) *AdminUserUsecase {
	return &AdminUserUsecase{tx: tx}
}

type UserOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *AdminUserUsecase) List(ctx context.Context, f repo.UserListFilter) ([]UserOutput, int64, error) {
	if f.Role != "" && !model.Role(f.Role).Valid() {
		return []UserOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid role")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}

	var (
		outs  []UserOutput
		total int64
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		users, n, err := r.Users().List(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

		outs = make([]UserOutput, 0, len(users))
		for _, usr := range users {
			outs = append(outs, UserOutput{
				ID:        usr.ID,
				Name:      usr.Name,
				Email:     usr.Email,
				Image:     usr.Image,
				Role:      string(usr.Role),
				CreatedAt: usr.CreatedAt,
			})
		}
		return nil
	})

	if err != nil {
		return []UserOutput{}, 0, err
	}
	return outs, total, nil
}

// UpdateRole はユーザーのロール変更。
// 自分自身のロールは変えられない（管理者が誰もいなくなる事故防止）。
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorUserID string, targetUserID string, newRole string) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	role := model.Role(strings.TrimSpace(newRole))
	if !role.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	if actorUserID == targetUserID {
		return NewHTTPError(http.StatusBadRequest, "Cannot change your own role")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, targetUserID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if target.Role == role {
			return nil
		}

		if err := r.Users().UpdateRole(ctx, targetUserID, role); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateUserRole,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			BeforeJSON:   roleJSON(target.Role),
			AfterJSON:    roleJSON(role),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

func roleJSON(role model.Role) string {
	b, _ := json.Marshal(map[string]string{"role": string(role)})
	return string(b)
}
