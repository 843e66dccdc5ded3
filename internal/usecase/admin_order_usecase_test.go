package usecase_test

import (
	"context"
	"testing"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	outs, _, err := uc.List(context.Background(), repo.AdminOrderSearchFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	outs, _, err := uc.List(context.Background(), repo.AdminOrderSearchFilter{Page: 1, Limit: 0})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	_, _, err := uc.List(context.Background(), repo.AdminOrderSearchFilter{Page: 1, Limit: 20, Status: "paid?"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_Success(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	f := repo.AdminOrderSearchFilter{Page: 1, Limit: 20, Keyword: "yamada"}

	ordersRepo.On("ListAdmin", mock.Anything, f).Return([]model.Order{
		{ID: 10, Status: model.OrderStatusPending},
		{ID: 11, Status: model.OrderStatusShipped},
	}, int64(2), nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, new(AuditRepoMock))

	outs, total, err := uc.List(ctx, f)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))
	assert.Equal(t, int64(2), total)

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	err := uc.UpdateStatus(context.Background(), 1, 1, usecase.AdminUpdateOrderStatusInput{Status: "unknown"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewAdminOrderUsecase(tx, new(AuditRepoMock))

	err := uc.UpdateStatus(ctx, 1, 99, usecase.AdminUpdateOrderStatusInput{Status: "processing"})
	assertErrContains(t, err, "not found")
}

// 遷移表に無い全組み合わせが拒否され、状態が一切変わらないこと
func TestAdminOrderUsecase_UpdateStatus_DisallowedTransitions(t *testing.T) {
	ctx := context.Background()

	all := []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			if model.CanTransition(from, to) {
				continue
			}

			tx := new(TxManagerMock)
			ordersRepo := new(OrderRepoMock)
			audit := new(AuditRepoMock)

			tx.Repos = &TxReposMock{orders: ordersRepo}
			tx.On("WithinTx", mock.Anything).Return(nil)

			ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
				ID: 5, Status: from,
			}, nil)

			uc := usecase.NewAdminOrderUsecase(tx, audit)

			err := uc.UpdateStatus(ctx, 1, 5, usecase.AdminUpdateOrderStatusInput{Status: string(to)})
			assertErrContains(t, err, "cannot transition")

			ordersRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
			audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	}
}

func TestAdminOrderUsecase_UpdateStatus_PendingToProcessing(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, Status: model.OrderStatusPending,
	}, nil)
	ordersRepo.On("UpdateFields", mock.Anything, int64(5), map[string]any{
		"status": model.OrderStatusProcessing,
	}).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus && l.ResourceID == int64(5) && l.ActorUserID == int64(1)
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, 1, 5, usecase.AdminUpdateOrderStatusInput{Status: "processing"})
	assert.NoError(t, err)

	ordersRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_CancelPaid_RestockAndRefund(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	varRepo := new(VariationRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, variations: varRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, Status: model.OrderStatusProcessing, PaymentStatus: model.PaymentStatusPaid,
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{OrderID: 5, ProductVariationID: 100, Quantity: 3},
	}, nil)
	varRepo.On("IncreaseStock", mock.Anything, int64(100), int64(3)).Return(nil)
	ordersRepo.On("UpdateFields", mock.Anything, int64(5), map[string]any{
		"status":         model.OrderStatusCancelled,
		"payment_status": model.PaymentStatusRefunded,
	}).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, 1, 5, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	assert.NoError(t, err)

	ordersRepo.AssertExpectations(t)
	varRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateOrder_NothingToUpdate(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	_, err := uc.UpdateOrder(context.Background(), 1, 5, usecase.AdminUpdateOrderInput{})
	assertErrContains(t, err, "nothing to update")
}

func TestAdminOrderUsecase_UpdateOrder_InvalidPaymentStatus(t *testing.T) {
	uc := usecase.NewAdminOrderUsecase(new(TxManagerMock), new(AuditRepoMock))

	// failedはゲートウェイ消し込み専用で手動設定は不可
	_, err := uc.UpdateOrder(context.Background(), 1, 5, usecase.AdminUpdateOrderInput{PaymentStatus: "failed"})
	assertErrContains(t, err, "invalid payment_status")
}

func TestAdminOrderUsecase_UpdateOrder_PartialUpdate(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	before := model.Order{ID: 5, ShippingName: "Old Name", Status: model.OrderStatusPending}
	after := model.Order{ID: 5, ShippingName: "New Name", Status: model.OrderStatusPending}

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(before, nil).Once()
	ordersRepo.On("UpdateFields", mock.Anything, int64(5), map[string]any{
		"shipping_name": "New Name",
	}).Return(nil)
	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(after, nil).Once()
	itemsRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{}, nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrder && l.ResourceID == int64(5)
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	out, err := uc.UpdateOrder(ctx, 1, 5, usecase.AdminUpdateOrderInput{ShippingName: "New Name"})
	assert.NoError(t, err)
	assert.Equal(t, "New Name", out.ShippingName)

	ordersRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_Delete_NotDelivered_RestoresStock(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	varRepo := new(VariationRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, variations: varRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, Status: model.OrderStatusProcessing, OrderNumber: "n-1",
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{OrderID: 5, ProductVariationID: 100, Quantity: 2},
	}, nil)
	varRepo.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	itemsRepo.On("DeleteByOrderID", mock.Anything, int64(5)).Return(nil)
	ordersRepo.On("Delete", mock.Anything, int64(5)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteOrder && l.ResourceID == int64(5)
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.Delete(ctx, 1, 5)
	assert.NoError(t, err)

	varRepo.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_Delete_Delivered_NoRestock(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	varRepo := new(VariationRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, variations: varRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, Status: model.OrderStatusDelivered, OrderNumber: "n-1",
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{OrderID: 5, ProductVariationID: 100, Quantity: 2},
	}, nil)
	itemsRepo.On("DeleteByOrderID", mock.Anything, int64(5)).Return(nil)
	ordersRepo.On("Delete", mock.Anything, int64(5)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.Delete(ctx, 1, 5)
	assert.NoError(t, err)

	varRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}
