package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)

	// 指定IDのうち本人所有のものだけ返す（注文作成の全件チェック用）
	ListByIDsForUser(ctx context.Context, userID int64, ids []int64) ([]model.CartItem, error)

	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// 同一バリエーションは数量を加算
	UpsertByUserAndVariation(ctx context.Context, userID int64, variationID int64, addQty int64) (model.CartItem, error)

	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
