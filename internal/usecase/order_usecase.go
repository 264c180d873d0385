package usecase

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文イベントの発行先（RabbitMQ）。nilなら発行しない。
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// チェックアウト側の計算ルールをサーバでも再現して突き合わせる。
// 税10%、小計100超で送料無料、それ以外は送料10。
var (
	taxRate          = decimal.NewFromFloat(0.10)
	freeShippingOver = decimal.NewFromInt(100)
	shippingFee      = decimal.NewFromInt(10)

	//通貨の丸め誤差として許す差
	totalTolerance = decimal.NewFromFloat(0.01)
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	products  repo.ProductRepository
	publisher EventPublisher
}

func NewOrderUsecase(tx repo.TransactionManager, products repo.ProductRepository, publisher EventPublisher) *OrderUsecase {
	return &OrderUsecase{tx: tx, products: products, publisher: publisher}
}

type CreateOrderItemInput struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int64
	Stock     int64 // クライアント側スナップショット。表示用で、検証には使わない
}

type CustomerInfo struct {
	Email      string
	FirstName  string
	LastName   string
	Address    string
	City       string
	PostalCode string
	Phone      string
}

type CreateOrderInput struct {
	Items       []CreateOrderItemInput
	Customer    CustomerInfo
	TotalAmount decimal.Decimal

	UserID         *string // nilならゲスト注文
	IdempotencyKey string  // 空なら再送排除なし
	OrderNotes     string
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        *string           `json:"user_id,omitempty"`
	Email         string            `json:"email"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// CreateOrder は注文を確定する。
// 検証はすべて書き込み前に行い、コミットは1トランザクション。
// どこかで失敗したら注文・明細・在庫減算のどれも残らない。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if err := validateCreateOrder(in); err != nil {
		return OrderOutput{}, err
	}

	// 先出しの在庫チェック（ユーザーへ早く返すため）。
	// 確定時の再チェックの代わりにはならない。
	checked := make(map[int64]model.Product, len(in.Items))
	for _, item := range in.Items {
		p, err := u.products.FindByID(ctx, item.ProductID)
		if err == repo.ErrNotFound {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Product %s not found", itemLabel(item)))
		}
		if err != nil {
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Product %s not found", itemLabel(item)))
		}
		if p.Stock < item.Quantity {
			return OrderOutput{}, &InsufficientStockError{
				ProductID: item.ProductID,
				Name:      itemLabel(item),
				Available: p.Stock,
				Requested: item.Quantity,
			}
		}
		checked[item.ProductID] = p
	}

	// 合計はサーバ側で再計算して申告値と突き合わせる
	total, err := u.verifyTotal(in)
	if err != nil {
		return OrderOutput{}, err
	}

	shippingAddress := formatShippingAddress(in.Customer)
	key := strings.TrimSpace(in.IdempotencyKey)

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ注文を返す
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		now := time.Now()
		order := model.Order{
			UserID:          in.UserID,
			Email:           in.Customer.Email,
			TotalAmount:     total,
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			ShippingAddress: shippingAddress,
			OrderNotes:      in.OrderNotes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時に同じキーが入った等）はもう一回検索して同じ結果を返す
			if key != "" {
				ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, key)
				if err2 == nil && found2 {
					items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
					if err3 != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
					out = toOrderOutput(ex2, items2)
					return nil
				}
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			name := item.Name
			if name == "" {
				name = checked[item.ProductID].NameEn
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           item.ProductID,
				ProductNameSnapshot: name,
				Price:               item.Price,
				Quantity:            item.Quantity,
				CreatedAt:           now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 在庫はここでもう一度、条件付きUPDATEで減らす。
		// 足りなければ注文全体を失敗させる（同時注文の売り越し防止）。
		for _, item := range in.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				available := int64(0)
				if p, err := r.Products().FindByID(ctx, item.ProductID); err == nil {
					available = p.Stock
				}
				return &InsufficientStockError{
					ProductID: item.ProductID,
					Name:      itemLabel(item),
					Available: available,
					Requested: item.Quantity,
				}
			}
		}

		created := order
		created.ID = orderID
		out = toOrderOutput(created, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	u.publishOrderCreated(out)
	return out, nil
}

func validateCreateOrder(in CreateOrderInput) error {
	if len(in.Items) == 0 || in.TotalAmount.IsZero() {
		return NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	c := in.Customer
	if c.Email == "" || c.FirstName == "" || c.LastName == "" ||
		c.Address == "" || c.City == "" || c.PostalCode == "" {
		return NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	for _, item := range in.Items {
		if item.ProductID <= 0 || item.Quantity < 1 || item.Price.IsNegative() {
			return NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	return nil
}

// 申告合計とサーバ計算の合計を突き合わせる。
// 明細単価はカート追加時点のスナップショットをそのまま使う。
func (u *OrderUsecase) verifyTotal(in CreateOrderInput) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range in.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}

	tax := subtotal.Mul(taxRate)
	shipping := shippingFee
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	expected := subtotal.Add(tax).Add(shipping).Round(2)
	if expected.Sub(in.TotalAmount).Abs().GreaterThan(totalTolerance) {
		return decimal.Zero, NewHTTPError(http.StatusBadRequest, "total amount mismatch")
	}

	return expected, nil
}

// 配送先の整形。
// "名 姓 / 住所 / 市, 郵便番号 / Phone: xxx"（電話は任意）
func formatShippingAddress(c CustomerInfo) string {
	s := fmt.Sprintf("%s %s\n%s\n%s, %s", c.FirstName, c.LastName, c.Address, c.City, c.PostalCode)
	if c.Phone != "" {
		s += "\nPhone: " + c.Phone
	}
	return s
}

func itemLabel(item CreateOrderItemInput) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("#%d", item.ProductID)
}

func (u *OrderUsecase) publishOrderCreated(o OrderOutput) {
	if u.publisher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload := map[string]interface{}{
			"orderId":     o.ID,
			"email":       o.Email,
			"totalAmount": o.TotalAmount.StringFixed(2),
			"itemCount":   len(o.Items),
			"createdAt":   o.CreatedAt,
		}
		if err := u.publisher.Publish(ctx, "order.created", payload); err != nil {
			log.Printf("failed to publish order.created for order %d: %v", o.ID, err)
		}
	}()
}

// ListMyOrders は自分の注文一覧。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	if userID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrderDetail は注文詳細。本人か管理者だけが見られる。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID string, isAdmin bool, orderID int64) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !isAdmin {
			//他人の注文は「存在しない扱い」にする
			if o.UserID == nil || *o.UserID != userID {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Email:         o.Email,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
