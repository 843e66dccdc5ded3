package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// 注文ステータスの遷移表。delivered / cancelled は終端。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// 遷移表に載っている遷移だけ許可
func CanTransition(from OrderStatus, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsOrderStatus(s string) bool {
	_, ok := orderTransitions[OrderStatus(s)]
	return ok
}

func IsPaymentStatus(s string) bool {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// total_amount は作成時に確定してそれ以降再計算しない
type Order struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64         `gorm:"not null;index" json:"user_id"`
	OrderNumber     string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	TotalAmount     int64         `gorm:"not null" json:"total_amount"`
	ShippingFee     int64         `gorm:"not null" json:"shipping_fee"`
	ShippingAddress string        `gorm:"type:varchar(255);not null" json:"shipping_address"`
	ShippingPhone   string        `gorm:"type:varchar(20);not null" json:"shipping_phone"`
	ShippingName    string        `gorm:"type:varchar(255);not null" json:"shipping_name"`
	PaymentMethod   string        `gorm:"type:varchar(50);not null" json:"payment_method"`
	Notes           string        `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
