package usecase

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"techmart/internal/cart"
	repo "techmart/internal/repository"
)

// カートの永続化先。実体はRedisだが、ここではトークン単位の
// 読み書きしか求めない。
type CartStore interface {
	Load(ctx context.Context, token string) (*cart.Cart, error)
	Save(ctx context.Context, token string, c *cart.Cart) error
	Delete(ctx context.Context, token string) error
}

type CartUsecase struct {
	store       CartStore
	productRepo repo.ProductRepository
}

func NewCartUsecase(store CartStore, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{store: store, productRepo: productRepo}
}

type CartItemOutput struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Stock     int64           `json:"stock"`
}

type CartResponse struct {
	Items    []CartItemOutput `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

func (u *CartUsecase) GetCart(ctx context.Context, token string) (CartResponse, error) {
	if token == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "missing cart token")
	}
	c, err := u.store.Load(ctx, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(c), nil
}

// AddItem は現在のカタログ情報（名前・価格・在庫）を引いてカートに積む。
// 在庫を超える追加は cart.StockExceededError のまま上へ返す。
func (u *CartUsecase) AddItem(ctx context.Context, token string, locale string, productID int64, quantity int64) (CartResponse, error) {
	if token == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "missing cart token")
	}
	if productID <= 0 || quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	loc, err := normalizeLocale(locale)
	if err != nil {
		return CartResponse{}, err
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	c, err := u.store.Load(ctx, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	if err := c.Add(cart.Entry{
		ProductID: p.ID,
		Name:      p.LocalizedName(loc),
		Price:     p.Price,
		Quantity:  quantity,
		Stock:     p.Stock,
	}); err != nil {
		return CartResponse{}, err
	}

	if err := u.store.Save(ctx, token, c); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(c), nil
}

// UpdateItem は数量変更。0以下は削除扱い（cart側のポリシーに従う）。
func (u *CartUsecase) UpdateItem(ctx context.Context, token string, productID int64, quantity int64) (CartResponse, error) {
	if token == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "missing cart token")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	c, err := u.store.Load(ctx, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	c.SetQuantity(productID, quantity)

	if err := u.store.Save(ctx, token, c); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(c), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, token string, productID int64) (CartResponse, error) {
	if token == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "missing cart token")
	}

	c, err := u.store.Load(ctx, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	c.Remove(productID)

	if err := u.store.Save(ctx, token, c); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return toCartResponse(c), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, token string) error {
	if token == "" {
		return NewHTTPError(http.StatusBadRequest, "missing cart token")
	}
	if err := u.store.Delete(ctx, token); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return nil
}

func toCartResponse(c *cart.Cart) CartResponse {
	entries := c.Entries()
	items := make([]CartItemOutput, 0, len(entries))
	for _, e := range entries {
		items = append(items, CartItemOutput{
			ProductID: e.ProductID,
			Name:      e.Name,
			Price:     e.Price,
			Quantity:  e.Quantity,
			Stock:     e.Stock,
		})
	}
	return CartResponse{Items: items, Subtotal: c.Subtotal()}
}
