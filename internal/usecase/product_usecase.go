package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
	auditRepo    repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		auditRepo:    auditRepo,
	}
}

// GET /products の入力
type ListProductsInput struct {
	Locale     string
	Search     string
	CategoryID *int64
	Featured   bool
	Limit      int
}

// 公開一覧の1件。localeに応じた名前・説明にして返す。
type PublicProduct struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	Stock        int64            `json:"stock"`
	ImageURL     string           `json:"image_url"`
	Category     string           `json:"category,omitempty"`
	IsFeatured   bool             `json:"is_featured"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) ([]PublicProduct, error) {
	locale, err := normalizeLocale(in.Locale)
	if err != nil {
		return []PublicProduct{}, err
	}
	if len(in.Search) > 100 {
		return []PublicProduct{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}

	items, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Locale:       locale,
		Search:       strings.TrimSpace(in.Search),
		CategoryID:   in.CategoryID,
		FeaturedOnly: in.Featured,
		Limit:        in.Limit,
	})
	if err != nil {
		return []PublicProduct{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// カテゴリ名はまとめて引く
	categories := map[int64]model.Category{}
	for _, p := range items {
		if p.CategoryID == nil {
			continue
		}
		if _, ok := categories[*p.CategoryID]; ok {
			continue
		}
		c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID)
		if err != nil {
			continue
		}
		categories[*p.CategoryID] = c
	}

	outs := make([]PublicProduct, 0, len(items))
	for _, p := range items {
		out := PublicProduct{
			ID:           p.ID,
			Name:         p.LocalizedName(locale),
			Description:  p.LocalizedDescription(locale),
			Price:        p.Price,
			ComparePrice: p.ComparePrice,
			Stock:        p.Stock,
			ImageURL:     p.ImageURL,
			IsFeatured:   p.IsFeatured,
		}
		if p.CategoryID != nil {
			if c, ok := categories[*p.CategoryID]; ok {
				out.Category = c.LocalizedName(locale)
			}
		}
		outs = append(outs, out)
	}

	return outs, nil
}

// 公開詳細（非公開商品は存在しない扱い）
func (u *ProductUsecase) GetPublicProduct(ctx context.Context, productID int64, locale string) (PublicProduct, error) {
	if productID <= 0 {
		return PublicProduct{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	loc, err := normalizeLocale(locale)
	if err != nil {
		return PublicProduct{}, err
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return PublicProduct{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PublicProduct{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return PublicProduct{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	out := PublicProduct{
		ID:           p.ID,
		Name:         p.LocalizedName(loc),
		Description:  p.LocalizedDescription(loc),
		Price:        p.Price,
		ComparePrice: p.ComparePrice,
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		IsFeatured:   p.IsFeatured,
	}
	if p.CategoryID != nil {
		if c, err := u.categoryRepo.FindByID(ctx, *p.CategoryID); err == nil {
			out.Category = c.LocalizedName(loc)
		}
	}
	return out, nil
}

// 管理画面の商品入力
type AdminProductInput struct {
	NameEn        string
	NameID        string
	DescriptionEn string
	DescriptionID string
	Price         decimal.Decimal
	ComparePrice  *decimal.Decimal
	Stock         int64
	CategoryID    *int64
	ImageURL      string
	IsActive      bool
	IsFeatured    bool
}

func validateAdminProduct(in AdminProductInput) error {
	if in.NameEn == "" || in.NameID == "" {
		return NewHTTPError(http.StatusBadRequest, "Name (English and Indonesian) is required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actorUserID string, in AdminProductInput) (model.Product, error) {
	if actorUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAdminProduct(in); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		NameEn:        in.NameEn,
		NameID:        in.NameID,
		DescriptionEn: in.DescriptionEn,
		DescriptionID: in.DescriptionID,
		Price:         in.Price,
		ComparePrice:  in.ComparePrice,
		Stock:         in.Stock,
		CategoryID:    in.CategoryID,
		ImageURL:      in.ImageURL,
		IsActive:      in.IsActive,
		IsFeatured:    in.IsFeatured,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, actorUserID string, productID int64, in AdminProductInput) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateAdminProduct(in); err != nil {
		return err
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p := existing
	p.NameEn = in.NameEn
	p.NameID = in.NameID
	p.DescriptionEn = in.DescriptionEn
	p.DescriptionID = in.DescriptionID
	p.Price = in.Price
	p.ComparePrice = in.ComparePrice
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.ImageURL = in.ImageURL
	p.IsActive = in.IsActive
	p.IsFeatured = in.IsFeatured

	if err := u.productRepo.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 在庫を変えた操作は監査ログに残す
	if existing.Stock != in.Stock {
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   strconv.FormatInt(productID, 10),
			BeforeJSON:   stockJSON(existing.Stock),
			AfterJSON:    stockJSON(in.Stock),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return nil
}

// AdminDeleteProduct は商品削除。
// 注文明細から参照されている商品は消さずに非公開にする。
// 過去の注文履歴を壊さないため。戻り値は「非公開化したかどうか」。
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actorUserID string, productID int64) (deactivated bool, err error) {
	if actorUserID == "" {
		return false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		count, err := r.OrderItems().CountByProductID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if count > 0 {
			if err := r.Products().Deactivate(ctx, productID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			deactivated = true
			return nil
		}

		if err := r.Products().HardDelete(ctx, productID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return false, err
	}
	return deactivated, nil
}

func normalizeLocale(locale string) (string, error) {
	switch locale {
	case "", model.LocaleEN:
		return model.LocaleEN, nil
	case model.LocaleID:
		return model.LocaleID, nil
	default:
		return "", NewHTTPError(http.StatusBadRequest, "invalid locale")
	}
}

func stockJSON(stock int64) string {
	b, _ := json.Marshal(map[string]int64{"stock": stock})
	return string(b)
}
