package handler

import (
	"net/http"

	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/categories の公開API
type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/categories", h.list)
}

func (h *CategoryHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("locale"), c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}
