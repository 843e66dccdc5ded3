package model

import "time"

// カート明細。同一ユーザー×同一バリエーションは1行で、追加は数量を加算する。
type CartItem struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64     `gorm:"not null;uniqueIndex:idx_cart_user_variation" json:"user_id"`
	ProductVariationID int64     `gorm:"not null;uniqueIndex:idx_cart_user_variation" json:"product_variation_id"`
	Quantity           int64     `gorm:"not null" json:"quantity"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
