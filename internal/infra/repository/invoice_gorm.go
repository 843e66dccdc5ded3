package repository

import (
	"context"
	"errors"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) Create(ctx context.Context, invoice model.Invoice) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return 0, err
	}
	return invoice.ID, nil
}

func (r *InvoiceGormRepository) FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", invoiceID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("invoice_number = ?", invoiceNumber).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus, paymentDate *time.Time) error {
	values := map[string]any{"status": status}
	if paymentDate != nil {
		values["payment_date"] = *paymentDate
	}

	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
