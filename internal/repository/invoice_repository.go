package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice model.Invoice) (int64, error)
	FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error)

	// 存在チェック用（重複請求書の409判定）
	FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error)

	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (model.Invoice, error)

	// 支払い結果の反映。paymentDateは成功時だけ渡す。
	UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus, paymentDate *time.Time) error
}
