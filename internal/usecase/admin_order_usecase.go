package usecase

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	publisher EventPublisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, publisher EventPublisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, publisher: publisher}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（管理者用）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		outs  []OrderOutput
		total int64
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

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
		return []OrderOutput{}, 0, err
	}
	return outs, total, nil
}

// UpdateStatus は注文ステータス変更。
// 終端（completed / cancelled）からは動かせない。それ以外の遷移は
// 管理者の手動操作を想定して制限しない（pending→completed も可）。
// completed にしたら支払いも paid に倒す。cancelled は在庫を戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID string, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var before, after model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			before, after = o, o
			return nil
		}
		// 終端ガード
		if o.Status.IsTerminal() {
			return NewHTTPError(http.StatusBadRequest, "cannot change "+string(o.Status)+" order")
		}

		// キャンセルは在庫を戻す
		if newStatus == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before = o
		after = o
		after.Status = newStatus

		// 完了にしたら支払い済みに倒す
		if newStatus == model.OrderStatusCompleted {
			if err := r.Orders().UpdatePaymentStatus(ctx, orderID, model.PaymentStatusPaid); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			after.PaymentStatus = model.PaymentStatusPaid
		}

		//監査ログも同じトランザクションで残す
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   strconv.FormatInt(orderID, 10),
			BeforeJSON:   orderStatusJSON(before),
			AfterJSON:    orderStatusJSON(after),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})

	if err != nil {
		return err
	}

	if before.Status != after.Status {
		u.publishStatusChanged(orderID, before, after)
	}
	return nil
}

func orderStatusJSON(o model.Order) string {
	b, err := json.Marshal(map[string]string{
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (u *AdminOrderUsecase) publishStatusChanged(orderID int64, before, after model.Order) {
	if u.publisher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload := map[string]interface{}{
			"orderId": orderID,
			"from":    string(before.Status),
			"to":      string(after.Status),
		}
		if err := u.publisher.Publish(ctx, "order.status_changed", payload); err != nil {
			log.Printf("failed to publish order.status_changed for order %d: %v", orderID, err)
		}
	}()
}
