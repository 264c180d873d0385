package usecase_test

import (
	"context"
	"errors"
	"testing"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"
	"techmart/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// List tests
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	outs, _, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	outs, _, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 0})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_List_InvalidStatusFilter(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, _, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "paid-ish"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_Success_CallsItemsPerOrder(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	f := repo.AdminOrderListFilter{Page: 1, Limit: 20}

	orders := []model.Order{
		{ID: 10, Status: model.OrderStatusPending},
		{ID: 11, Status: model.OrderStatusProcessing},
	}

	ordersRepo.On("ListAdmin", mock.Anything, f).Return(orders, int64(2), nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	outs, total, err := uc.List(ctx, f)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))
	assert.Equal(t, int64(2), total)

	tx.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

// =====================
// UpdateStatus tests
// =====================

func TestAdminOrderUsecase_UpdateStatus_UnauthorizedActor(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(context.Background(), "", 1, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertErrContains(t, err, "unauthorized")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidOrderID(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(context.Background(), "admin-1", 0, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertErrContains(t, err, "invalid id")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(context.Background(), "admin-1", 1, usecase.AdminUpdateOrderStatusInput{Status: "XXX"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(99)
	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", orderID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertErrContains(t, err, "not found")

	ordersRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, auditLogs: audit}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(1)
	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		Status: model.OrderStatusShipped,
	}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", orderID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assert.NoError(t, err)

	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_CannotChangeCancelled(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusCancelled,
	}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", 1, usecase.AdminUpdateOrderStatusInput{Status: "pending"})
	assertErrContains(t, err, "cannot change cancelled order")
}

func TestAdminOrderUsecase_UpdateStatus_CannotChangeCompleted(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusCompleted,
	}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", 1, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertErrContains(t, err, "cannot change completed order")
}

// cancelled にしたら在庫戻し + audit
func TestAdminOrderUsecase_UpdateStatus_Cancel_RestoresStock_And_Audits(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		orders:     ordersRepo,
		orderItems: itemsRepo,
		inventory:  invRepo,
		auditLogs:  audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := "admin-999"
	orderID := int64(50)

	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{
		ID:            orderID,
		Status:        model.OrderStatusProcessing,
		PaymentStatus: model.PaymentStatusPending,
	}, nil)

	items := []model.OrderItem{
		{OrderID: orderID, ProductID: 100, Quantity: 2},
		{OrderID: orderID, ProductID: 101, Quantity: 1},
	}
	itemsRepo.On("ListByOrderID", mock.Anything, orderID).Return(items, nil)

	invRepo.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(101), int64(1)).Return(nil)

	ordersRepo.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusCancelled).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		// CreatedAt は now なので見ない
		return a.ActorUserID == adminID &&
			a.Action == model.AuditActionUpdateOrderStatus &&
			a.ResourceType == model.AuditResourceOrder &&
			a.ResourceID == "50" &&
			a.BeforeJSON == `{"payment_status":"pending","status":"processing"}` &&
			a.AfterJSON == `{"payment_status":"pending","status":"cancelled"}`
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	assert.NoError(t, err)

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// completed にしたら支払いも paid に倒す。在庫戻しはなし
func TestAdminOrderUsecase_UpdateStatus_Completed_ForcesPaid(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{
		orders:     ordersRepo,
		orderItems: itemsRepo,
		inventory:  invRepo,
		auditLogs:  audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(60)

	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{
		ID:            orderID,
		Status:        model.OrderStatusShipped,
		PaymentStatus: model.PaymentStatusPending,
	}, nil)

	ordersRepo.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusCompleted).Return(nil)
	ordersRepo.On("UpdatePaymentStatus", mock.Anything, orderID, model.PaymentStatusPaid).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.AfterJSON == `{"payment_status":"paid","status":"completed"}`
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", orderID, usecase.AdminUpdateOrderStatusInput{Status: "completed"})
	assert.NoError(t, err)

	itemsRepo.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)

	ordersRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_DBError_OnUpdate(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(70)

	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		Status: model.OrderStatusPending,
	}, nil)

	ordersRepo.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusShipped).Return(errors.New("db down"))

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	err := uc.UpdateStatus(ctx, "admin-1", orderID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertErrContains(t, err, "db error")
}
