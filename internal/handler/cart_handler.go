package handler

import (
	"net/http"
	"strconv"

	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カートはX-Cart-Tokenヘッダで識別する（未ログインでも使える）。
const cartTokenHeader = "X-Cart-Token"

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type cartAddRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Locale    string `json:"locale"`
}

type cartUpdateRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.get)
	g.POST("/cart/items", h.add)
	g.PATCH("/cart/items/:productId", h.update)
	g.DELETE("/cart/items/:productId", h.remove)
	g.DELETE("/cart", h.clear)
}

func (h *CartHandler) get(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), c.Request().Header.Get(cartTokenHeader))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *CartHandler) add(c echo.Context) error {
	var req cartAddRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	out, err := h.uc.AddItem(c.Request().Context(),
		c.Request().Header.Get(cartTokenHeader), req.Locale, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *CartHandler) update(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	var req cartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	out, err := h.uc.UpdateItem(c.Request().Context(),
		c.Request().Header.Get(cartTokenHeader), productID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *CartHandler) remove(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	out, err := h.uc.RemoveItem(c.Request().Context(),
		c.Request().Header.Get(cartTokenHeader), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *CartHandler) clear(c echo.Context) error {
	if err := h.uc.ClearCart(c.Request().Context(), c.Request().Header.Get(cartTokenHeader)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(nil))
}
