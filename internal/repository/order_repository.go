package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

type AdminOrderSearchFilter struct {
	Page        int
	Limit       int
	Keyword     string
	Status      string
	OrderNumber string
	UserID      *int64
	From        *time.Time
	To          *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 部分更新（キャンセル・管理者編集）
	UpdateFields(ctx context.Context, orderID int64, values map[string]any) error

	Delete(ctx context.Context, orderID int64) error

	//管理者用の注文検索
	ListAdmin(ctx context.Context, f AdminOrderSearchFilter) ([]model.Order, int64, error)
}
