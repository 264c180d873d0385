package handler

import (
	"net/http"
	"strconv"

	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /api/admin 配下の商品・カテゴリ管理。
// ルートグループ側でAuthJWT+AdminRoleGuardが掛かっている前提。
type AdminProductHandler struct {
	productUC  *usecase.ProductUsecase
	categoryUC *usecase.CategoryUsecase
}

func NewAdminProductHandler(productUC *usecase.ProductUsecase, categoryUC *usecase.CategoryUsecase) *AdminProductHandler {
	return &AdminProductHandler{productUC: productUC, categoryUC: categoryUC}
}

type adminProductRequest struct {
	NameEn        string           `json:"name_en"`
	NameID        string           `json:"name_id"`
	DescriptionEn string           `json:"description_en"`
	DescriptionID string           `json:"description_id"`
	Price         decimal.Decimal  `json:"price"`
	ComparePrice  *decimal.Decimal `json:"compare_price"`
	Stock         int64            `json:"stock"`
	CategoryID    *int64           `json:"category_id"`
	ImageURL      string           `json:"image_url"`
	IsActive      bool             `json:"is_active"`
	IsFeatured    bool             `json:"is_featured"`
}

type adminCategoryRequest struct {
	NameEn string `json:"name_en"`
	NameID string `json:"name_id"`
	Image  string `json:"image"`
}

type deleteProductResponse struct {
	Success     bool   `json:"success"`
	Deactivated bool   `json:"deactivated"`
	Message     string `json:"message"`
}

func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.createProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.POST("/categories", h.createCategory)
	g.PUT("/categories/:id", h.updateCategory)
	g.DELETE("/categories/:id", h.deleteCategory)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	var req adminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	p, err := h.productUC.AdminCreateProduct(c.Request().Context(), actorID, toAdminProductInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dataJSON(p))
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	var req adminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	if err := h.productUC.AdminUpdateProduct(c.Request().Context(), actorID, id, toAdminProductInput(req)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(nil))
}

// deleteProduct は注文実績のある商品を消さずに非公開化する。
func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	deactivated, err := h.productUC.AdminDeleteProduct(c.Request().Context(), actorID, id)
	if err != nil {
		return writeError(c, err)
	}

	msg := "Product deleted"
	if deactivated {
		msg = "Product deactivated because it has existing orders"
	}
	return c.JSON(http.StatusOK, deleteProductResponse{
		Success:     true,
		Deactivated: deactivated,
		Message:     msg,
	})
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	var req adminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	out, err := h.categoryUC.Create(c.Request().Context(), actorID, usecase.CategoryInput{
		NameEn: req.NameEn,
		NameID: req.NameID,
		Image:  req.Image,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dataJSON(out))
}

func (h *AdminProductHandler) updateCategory(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	var req adminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	if err := h.categoryUC.Update(c.Request().Context(), actorID, id, usecase.CategoryInput{
		NameEn: req.NameEn,
		NameID: req.NameID,
		Image:  req.Image,
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(nil))
}

func (h *AdminProductHandler) deleteCategory(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	if err := h.categoryUC.Delete(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(nil))
}

func toAdminProductInput(req adminProductRequest) usecase.AdminProductInput {
	return usecase.AdminProductInput{
		NameEn:        req.NameEn,
		NameID:        req.NameID,
		DescriptionEn: req.DescriptionEn,
		DescriptionID: req.DescriptionID,
		Price:         req.Price,
		ComparePrice:  req.ComparePrice,
		Stock:         req.Stock,
		CategoryID:    req.CategoryID,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
		IsFeatured:    req.IsFeatured,
	}
}
