package usecase

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository, tx repo.TransactionManager) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo, tx: tx}
}

type CategoryOutput struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	NameEn    string    `json:"name_en"`
	NameID    string    `json:"name_id"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	NameEn string
	NameID string
	Image  string
}

func (u *CategoryUsecase) List(ctx context.Context, locale string, search string) ([]CategoryOutput, error) {
	loc, err := normalizeLocale(locale)
	if err != nil {
		return []CategoryOutput{}, err
	}

	items, err := u.categoryRepo.List(ctx, repo.CategoryListQuery{
		Locale: loc,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return []CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]CategoryOutput, 0, len(items))
	for _, c := range items {
		outs = append(outs, toCategoryOutput(c, loc))
	}
	return outs, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, actorUserID string, in CategoryInput) (CategoryOutput, error) {
	if actorUserID == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.NameEn == "" || in.NameID == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "Name (English and Indonesian) is required")
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		NameEn: in.NameEn,
		NameID: in.NameID,
		Slug:   slugify(in.NameEn),
		Image:  in.Image,
	})
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCategoryOutput(c, model.LocaleEN), nil
}

func (u *CategoryUsecase) Update(ctx context.Context, actorUserID string, categoryID int64, in CategoryInput) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.NameEn == "" || in.NameID == "" {
		return NewHTTPError(http.StatusBadRequest, "Name (English and Indonesian) is required")
	}

	existing, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	existing.NameEn = in.NameEn
	existing.NameID = in.NameID
	existing.Slug = slugify(in.NameEn)
	existing.Image = in.Image

	if err := u.categoryRepo.Update(ctx, existing); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Delete はカテゴリ削除。参照している商品は未分類（NULL）に戻る。
func (u *CategoryUsecase) Delete(ctx context.Context, actorUserID string, categoryID int64) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	//商品側の付け替えと削除を1トランザクションで
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Categories().Delete(ctx, categoryID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// 英語名からslugを作る（小文字・記号除去・空白はハイフン）
func slugify(name string) string {
	s := strings.ToLower(name)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func toCategoryOutput(c model.Category, locale string) CategoryOutput {
	return CategoryOutput{
		ID:        c.ID,
		Name:      c.LocalizedName(locale),
		NameEn:    c.NameEn,
		NameID:    c.NameID,
		Slug:      c.Slug,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
