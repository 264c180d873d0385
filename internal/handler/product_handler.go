package handler

import (
	"net/http"
	"strconv"

	"techmart/internal/cart"
	"techmart/internal/middleware"
	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
}

func errJSON(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

func dataJSON(v interface{}) DataResponse {
	return DataResponse{Success: true, Data: v}
}

func listJSON(v interface{}, total int64) ListResponse {
	return ListResponse{Success: true, Data: v, Total: total}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, errJSON(he.Message))
	}
	//在庫不足はエラー文をそのまま画面に出す
	if ise, ok := usecase.AsInsufficientStock(err); ok {
		return c.JSON(http.StatusBadRequest, errJSON(ise.Error()))
	}
	if see, ok := err.(*cart.StockExceededError); ok {
		return c.JSON(http.StatusBadRequest, errJSON(see.Error()))
	}

	//500
	return c.JSON(http.StatusInternalServerError, errJSON("internal error"))
}

// contextから認証済みuser_idを取り出す（string UUID）
func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func getRoleFromContext(c echo.Context) string {
	v := c.Get(middleware.CtxUserRoleKey)
	s, _ := v.(string)
	return s
}

// /api/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	locale := c.QueryParam("locale")
	search := c.QueryParam("search")
	featured := c.QueryParam("featured") == "true"

	var categoryID *int64
	if v := c.QueryParam("category"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("invalid category"))
		}
		categoryID = &x
	}

	// limit（default 50）
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("invalid limit"))
		}
		limit = l
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Locale:     locale,
		Search:     search,
		CategoryID: categoryID,
		Featured:   featured,
		Limit:      limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	p, err := h.uc.GetPublicProduct(c.Request().Context(), id, c.QueryParam("locale"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dataJSON(p))
}
