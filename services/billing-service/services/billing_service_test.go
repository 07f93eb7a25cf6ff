package services_test

import (
	"context"
	"testing"

	"github.com/orderhub/backend/services/billing-service/models"
	"github.com/orderhub/backend/services/billing-service/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvoiceRepo struct {
	invoices  []*models.Invoice
	createErr error
}

func (m *mockInvoiceRepo) Create(_ context.Context, invoice *models.Invoice) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.invoices = append(m.invoices, invoice)
	return nil
}

func (m *mockInvoiceRepo) FindAll(_ context.Context) ([]models.Invoice, error) {
	out := make([]models.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

type mockEvents struct {
	sent    []interface{}
	sendErr error
}

func (m *mockEvents) SendEvent(_ context.Context, _ string, event interface{}) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, event)
	return nil
}

func laptopEvent() *models.OrderCreatedEvent {
	return &models.OrderCreatedEvent{
		Request: models.OrderCreatedRequest{Name: "Laptop", Price: 1200, PhoneNumber: "+15550000"},
	}
}

func TestProcessOrderCreated(t *testing.T) {
	repo := &mockInvoiceRepo{}
	events := &mockEvents{}
	svc := services.NewBillingService(repo, events, nil)

	err := svc.ProcessOrderCreated(context.Background(), laptopEvent())
	require.NoError(t, err)

	require.Len(t, repo.invoices, 1)
	invoice := repo.invoices[0]
	assert.Equal(t, "Laptop", invoice.OrderName)
	assert.Equal(t, float64(1200), invoice.Amount)
	assert.Equal(t, "billed", invoice.Status)

	require.Len(t, events.sent, 1)
	sent, ok := events.sent[0].(models.InvoiceCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, invoice.ID.String(), sent.InvoiceID)
}

func TestProcessOrderCreatedStoreFailure(t *testing.T) {
	repo := &mockInvoiceRepo{createErr: assert.AnError}
	events := &mockEvents{}
	svc := services.NewBillingService(repo, events, nil)

	err := svc.ProcessOrderCreated(context.Background(), laptopEvent())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, events.sent)
}

func TestProcessOrderCreatedEventFailureIsSwallowed(t *testing.T) {
	repo := &mockInvoiceRepo{}
	events := &mockEvents{sendErr: assert.AnError}
	svc := services.NewBillingService(repo, events, nil)

	// Analytics are best-effort; billing still succeeds.
	err := svc.ProcessOrderCreated(context.Background(), laptopEvent())
	assert.NoError(t, err)
	assert.Len(t, repo.invoices, 1)
}

func TestProcessOrderCreatedWithoutProducer(t *testing.T) {
	repo := &mockInvoiceRepo{}
	svc := services.NewBillingService(repo, nil, nil)

	err := svc.ProcessOrderCreated(context.Background(), laptopEvent())
	assert.NoError(t, err)
}

func TestListInvoices(t *testing.T) {
	repo := &mockInvoiceRepo{}
	svc := services.NewBillingService(repo, nil, nil)

	invoices, err := svc.ListInvoices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invoices)
}
