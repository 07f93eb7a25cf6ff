package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orderhub/backend/services/billing-service/models"
	"go.uber.org/zap"
)

// BillingServiceAPI is the service surface the controller depends on.
type BillingServiceAPI interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
}

type InvoiceController struct {
	billing BillingServiceAPI
	logger  *zap.Logger
}

func NewInvoiceController(billing BillingServiceAPI, logger *zap.Logger) *InvoiceController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceController{billing: billing, logger: logger}
}

// GetInvoices returns all invoices
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	invoices, err := ic.billing.ListInvoices(c.Request.Context())
	if err != nil {
		ic.logger.Error("failed to fetch invoices", zap.Error(err))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
