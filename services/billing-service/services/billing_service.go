package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/services/billing-service/models"
	"go.uber.org/zap"
)

// InvoiceRepositoryAPI abstracts invoice storage.
type InvoiceRepositoryAPI interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindAll(ctx context.Context) ([]models.Invoice, error)
}

// EventProducerAPI is the best-effort analytics sink.
type EventProducerAPI interface {
	SendEvent(ctx context.Context, key string, event interface{}) error
}

// BillingService turns order-created notifications into invoices.
type BillingService struct {
	invoices InvoiceRepositoryAPI
	events   EventProducerAPI
	logger   *zap.Logger
}

// NewBillingService creates the service. events may be nil when no
// Kafka cluster is configured.
func NewBillingService(invoices InvoiceRepositoryAPI, events EventProducerAPI, logger *zap.Logger) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{invoices: invoices, events: events, logger: logger}
}

// ProcessOrderCreated bills the order described by the notification.
func (s *BillingService) ProcessOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	invoice := &models.Invoice{
		ID:          uuid.New(),
		OrderName:   event.Request.Name,
		Amount:      event.Request.Price,
		PhoneNumber: event.Request.PhoneNumber,
		Status:      "billed",
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("order_name", invoice.OrderName),
		zap.Float64("amount", invoice.Amount))

	// Analytics event is best-effort; a Kafka outage never fails billing.
	if s.events != nil {
		evt := models.InvoiceCreatedEvent{
			InvoiceID: invoice.ID.String(),
			OrderName: invoice.OrderName,
			Amount:    invoice.Amount,
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		}
		if err := s.events.SendEvent(ctx, invoice.ID.String(), evt); err != nil {
			s.logger.Warn("failed to send invoice event", zap.Error(err))
		}
	}

	return nil
}

// ListInvoices returns all invoices, newest first.
func (s *BillingService) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices.FindAll(ctx)
}
