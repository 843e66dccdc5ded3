package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	variations repo.VariationRepository
	invoices   repo.InvoiceRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Variations() repo.VariationRepository { return r.variations }
func (r *TxReposMock) Invoices() repo.InvoiceRepository     { return r.invoices }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateFields(ctx context.Context, orderID int64, values map[string]any) error {
	args := m.Called(ctx, orderID, values)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderSearchFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ListByIDsForUser(ctx context.Context, userID int64, ids []int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID, ids)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByUserAndVariation(ctx context.Context, userID int64, variationID int64, addQty int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, variationID, addQty)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByIDs(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type VariationRepoMock struct{ mock.Mock }

func (m *VariationRepoMock) FindByID(ctx context.Context, variationID int64) (model.ProductVariation, error) {
	args := m.Called(ctx, variationID)
	v, _ := args.Get(0).(model.ProductVariation)
	return v, args.Error(1)
}

func (m *VariationRepoMock) ListAttributes(ctx context.Context, variationID int64) ([]model.VariationAttribute, error) {
	args := m.Called(ctx, variationID)
	attrs, _ := args.Get(0).([]model.VariationAttribute)
	return attrs, args.Error(1)
}

func (m *VariationRepoMock) DecreaseStockIfEnough(ctx context.Context, variationID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variationID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *VariationRepoMock) IncreaseStock(ctx context.Context, variationID int64, qty int64) error {
	args := m.Called(ctx, variationID, qty)
	return args.Error(0)
}

type InvoiceRepoMock struct{ mock.Mock }

func (m *InvoiceRepoMock) Create(ctx context.Context, invoice model.Invoice) (int64, error) {
	args := m.Called(ctx, invoice)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InvoiceRepoMock) FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error) {
	args := m.Called(ctx, orderID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *InvoiceRepoMock) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (model.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus, paymentDate *time.Time) error {
	args := m.Called(ctx, invoiceID, status, paymentDate)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

// =====================
// Helpers
// =====================

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func int64Ptr(v int64) *int64 { return &v }
