package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type VariationGormRepository struct {
	db *gorm.DB
}

func NewVariationGormRepository(db *gorm.DB) *VariationGormRepository {
	return &VariationGormRepository{db: db}
}

func (r *VariationGormRepository) FindByID(ctx context.Context, variationID int64) (model.ProductVariation, error) {
	var v model.ProductVariation
	err := r.db.WithContext(ctx).Where("id = ?", variationID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariation{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariation{}, err
	}
	return v, nil
}

func (r *VariationGormRepository) ListAttributes(ctx context.Context, variationID int64) ([]model.VariationAttribute, error) {
	var attrs []model.VariationAttribute
	err := r.db.WithContext(ctx).
		Where("product_variation_id = ?", variationID).
		Order("id asc").
		Find(&attrs).Error
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// 在庫が足りるときだけ減らす（条件付きUPDATEで同時注文でも負在庫にしない）
func (r *VariationGormRepository) DecreaseStockIfEnough(ctx context.Context, variationID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProductVariation{}).
		Where("id = ? AND stock_quantity >= ?", variationID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル・削除）
func (r *VariationGormRepository) IncreaseStock(ctx context.Context, variationID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductVariation{}).
		Where("id = ?", variationID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
