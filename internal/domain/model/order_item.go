package model

import "time"

// 注文明細。価格・割引・属性は購入時点のスナップショットで、後から変更しない。
type OrderItem struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID            int64     `gorm:"not null;index" json:"order_id"`
	ProductID          int64     `gorm:"not null;index" json:"product_id"`
	ProductVariationID int64     `gorm:"not null;index" json:"product_variation_id"`
	Quantity           int64     `gorm:"not null" json:"quantity"`
	Price              int64     `gorm:"not null" json:"price"`
	DiscountPrice      *int64    `json:"discount_price"`
	AttributesSnapshot string    `gorm:"type:text" json:"attributes_snapshot"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 割引があれば割引価格を使う
func (i OrderItem) UnitPrice() int64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}
