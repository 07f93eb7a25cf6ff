package repository

import (
	"context"

	"github.com/orderhub/backend/services/billing-service/models"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) FindAll(ctx context.Context) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}
