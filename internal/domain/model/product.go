package model

import "time"

type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Status      bool      `gorm:"not null;default:true" json:"status"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品バリエーション。在庫は注文作成で減り、キャンセル・削除で戻る。
type ProductVariation struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64     `gorm:"not null;index" json:"product_id"`
	SKU           string    `gorm:"type:varchar(100);not null;uniqueIndex;column:sku" json:"sku"`
	Price         int64     `gorm:"not null" json:"price"`
	DiscountPrice *int64    `json:"discount_price"`
	StockQuantity int64     `gorm:"not null;default:0" json:"stock_quantity"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	Status        bool      `gorm:"not null;default:true" json:"status"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 割引があれば割引価格を優先
func (v ProductVariation) UnitPrice() int64 {
	if v.DiscountPrice != nil {
		return *v.DiscountPrice
	}
	return v.Price
}

// バリエーションの属性（色・サイズなど）。注文時にJSONへスナップショットされる。
type VariationAttribute struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductVariationID int64  `gorm:"not null;index" json:"product_variation_id"`
	AttributeType      string `gorm:"type:varchar(100);not null" json:"attribute_type"`
	AttributeValue     string `gorm:"type:varchar(255);not null" json:"attribute_value"`
}
