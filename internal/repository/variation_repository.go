package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type VariationRepository interface {
	FindByID(ctx context.Context, variationID int64) (model.ProductVariation, error)

	// 属性一覧（注文時のスナップショット用）
	ListAttributes(ctx context.Context, variationID int64) ([]model.VariationAttribute, error)

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, variationID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル・削除）
	IncreaseStock(ctx context.Context, variationID int64, qty int64) error
}
