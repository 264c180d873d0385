package handler

import (
	"net/http"
	"strconv"

	"techmart/internal/config"
	"techmart/internal/middleware"
	"techmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc     *usecase.OrderUsecase
	cartUC *usecase.CartUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, cartUC *usecase.CartUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, cartUC: cartUC}
}

type orderItemRequest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Stock    int64           `json:"stock"`
}

type customerInfoRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type orderCreateRequest struct {
	Items        []orderItemRequest  `json:"items"`
	CustomerInfo customerInfoRequest `json:"customerInfo"`
	TotalAmount  decimal.Decimal     `json:"totalAmount"`
	OrderNotes   string              `json:"orderNotes"`
}

type orderCreateResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	//注文作成はゲストも可（トークンがあれば本人注文として記録）
	g.POST("/orders", h.create, middleware.OptionalAuthJWT(cfg))

	g.GET("/orders", h.list, middleware.AuthJWT(cfg))
	g.GET("/orders/:id", h.detail, middleware.AuthJWT(cfg))
}

func (h *OrderHandler) create(c echo.Context) error {
	var req orderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid body"))
	}

	//ログイン済みなら注文に紐付ける
	var userID *string
	if id, ok := getUserIDFromContext(c); ok {
		userID = &id
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Stock:     it.Stock,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		Items: items,
		Customer: usecase.CustomerInfo{
			Email:      req.CustomerInfo.Email,
			FirstName:  req.CustomerInfo.FirstName,
			LastName:   req.CustomerInfo.LastName,
			Address:    req.CustomerInfo.Address,
			City:       req.CustomerInfo.City,
			PostalCode: req.CustomerInfo.PostalCode,
			Phone:      req.CustomerInfo.Phone,
		},
		TotalAmount:    req.TotalAmount,
		UserID:         userID,
		IdempotencyKey: idemKey,
		OrderNotes:     req.OrderNotes,
	})
	if err != nil {
		return writeError(c, err)
	}

	//注文が通ったらカートは空にする。失敗しても注文は成立している
	if token := c.Request().Header.Get(cartTokenHeader); token != "" {
		_ = h.cartUC.ClearCart(c.Request().Context(), token)
	}

	return c.JSON(http.StatusOK, orderCreateResponse{Success: true, OrderID: out.ID})
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errJSON("unauthorized"))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid id"))
	}

	isAdmin := getRoleFromContext(c) == "admin"

	out, err := h.uc.GetOrderDetail(c.Request().Context(), userID, isAdmin, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dataJSON(out))
}
