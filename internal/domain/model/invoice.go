package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusFailed    InvoiceStatus = "failed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// 1注文につき請求書は1枚（order_idはuniqueIndex）
type Invoice struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64         `gorm:"not null;uniqueIndex" json:"order_id"`
	InvoiceNumber string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"invoice_number"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentDate   *time.Time    `json:"payment_date"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
