package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/orderhub/backend/services/billing-service/models"
	"github.com/orderhub/backend/services/common/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAcknowledger struct {
	acked []string
}

func (m *mockAcknowledger) Acknowledge(_ context.Context, _ string, receiptHandle string) error {
	m.acked = append(m.acked, receiptHandle)
	return nil
}

type mockProcessor struct {
	processed  []*models.OrderCreatedEvent
	processErr error
}

func (m *mockProcessor) ProcessOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	m.processed = append(m.processed, event)
	return m.processErr
}

func notification(t *testing.T, wrapInSNS bool) broker.Message {
	event := models.OrderCreatedEvent{
		Request: models.OrderCreatedRequest{Name: "Laptop", Price: 1200, PhoneNumber: "+15550000"},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	if wrapInSNS {
		body, err = json.Marshal(map[string]string{"Message": string(body)})
		require.NoError(t, err)
	}
	return broker.Message{Body: body, ReceiptHandle: "rh-1"}
}

func TestHandleProcessesAndAcks(t *testing.T) {
	ack := &mockAcknowledger{}
	processor := &mockProcessor{}
	c := NewBillingConsumer(ack, processor, "https://sqs/billing", nil)

	c.Handle(context.Background(), notification(t, true))

	require.Len(t, processor.processed, 1)
	assert.Equal(t, "Laptop", processor.processed[0].Request.Name)
	assert.Equal(t, []string{"rh-1"}, ack.acked)
}

func TestHandleRawBodyWithoutEnvelope(t *testing.T) {
	ack := &mockAcknowledger{}
	processor := &mockProcessor{}
	c := NewBillingConsumer(ack, processor, "https://sqs/billing", nil)

	c.Handle(context.Background(), notification(t, false))

	require.Len(t, processor.processed, 1)
	assert.Equal(t, "Laptop", processor.processed[0].Request.Name)
}

func TestHandleAcksOnProcessingFailure(t *testing.T) {
	ack := &mockAcknowledger{}
	processor := &mockProcessor{processErr: assert.AnError}
	c := NewBillingConsumer(ack, processor, "https://sqs/billing", nil)

	c.Handle(context.Background(), notification(t, true))

	// Policy: billing failures never hold the message hostage.
	assert.Equal(t, []string{"rh-1"}, ack.acked)
}

func TestHandleAcksUnparseableMessage(t *testing.T) {
	ack := &mockAcknowledger{}
	processor := &mockProcessor{}
	c := NewBillingConsumer(ack, processor, "https://sqs/billing", nil)

	c.Handle(context.Background(), broker.Message{Body: []byte("not json"), ReceiptHandle: "rh-2"})

	assert.Empty(t, processor.processed)
	assert.Equal(t, []string{"rh-2"}, ack.acked)
}
