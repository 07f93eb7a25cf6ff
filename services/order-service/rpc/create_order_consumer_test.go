package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/orderhub/backend/services/common/broker"
	apperrors "github.com/orderhub/backend/services/common/errors"
	"github.com/orderhub/backend/services/order-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReplier struct {
	replies []interface{}
	acked   []string
}

func (m *mockReplier) Reply(_ context.Context, _ broker.Message, payload interface{}) error {
	m.replies = append(m.replies, payload)
	return nil
}

func (m *mockReplier) Acknowledge(_ context.Context, _ string, receiptHandle string) error {
	m.acked = append(m.acked, receiptHandle)
	return nil
}

type mockGuard struct {
	allow bool
}

func (g *mockGuard) AllowMessage(ctx context.Context, _ []byte) (context.Context, error) {
	if !g.allow {
		return ctx, apperrors.ErrUnauthorized
	}
	return ctx, nil
}

type mockCreator struct {
	created   []*models.CreateOrderRequest
	createErr error
}

func (c *mockCreator) CreateOrder(_ context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = append(c.created, req)
	return &models.Order{ID: uuid.NewString(), Name: req.Name, Price: req.Price, PhoneNumber: req.PhoneNumber}, nil
}

func orderMessage(t *testing.T) broker.Message {
	body, err := json.Marshal(map[string]interface{}{
		"authentication": "valid-123",
		"name":           "Laptop",
		"price":          1200,
		"phoneNumber":    "+15550000",
	})
	require.NoError(t, err)
	return broker.Message{Body: body, ReceiptHandle: "rh-1", CorrelationID: "corr-1", ReplyTo: "https://sqs/reply"}
}

func TestHandleCreatesOrder(t *testing.T) {
	replier := &mockReplier{}
	creator := &mockCreator{}
	consumer := NewCreateOrderConsumer(replier, &mockGuard{allow: true}, creator, "https://sqs/create-order", nil)

	consumer.Handle(context.Background(), orderMessage(t))

	require.Len(t, creator.created, 1)
	assert.Equal(t, "Laptop", creator.created[0].Name)

	require.Len(t, replier.replies, 1)
	order, ok := replier.replies[0].(*models.Order)
	require.True(t, ok)
	assert.Equal(t, "Laptop", order.Name)
	assert.Equal(t, []string{"rh-1"}, replier.acked)
}

func TestHandleRejectsInvalidPayload(t *testing.T) {
	replier := &mockReplier{}
	creator := &mockCreator{}
	consumer := NewCreateOrderConsumer(replier, &mockGuard{allow: true}, creator, "https://sqs/create-order", nil)

	body, err := json.Marshal(map[string]interface{}{
		"authentication": "valid-123",
		"name":           "",
		"price":          -5,
	})
	require.NoError(t, err)
	consumer.Handle(context.Background(), broker.Message{
		Body: body, ReceiptHandle: "rh-2", CorrelationID: "corr-2", ReplyTo: "https://sqs/reply",
	})

	// An empty name and a non-positive price never reach the saga.
	assert.Empty(t, creator.created)
	require.Len(t, replier.replies, 1)
	reply, ok := replier.replies[0].(errorReply)
	require.True(t, ok)
	assert.Equal(t, "Invalid request", reply.Error)
	assert.Equal(t, []string{"rh-2"}, replier.acked)
}

func TestHandleRejectsUnauthenticated(t *testing.T) {
	replier := &mockReplier{}
	creator := &mockCreator{}
	consumer := NewCreateOrderConsumer(replier, &mockGuard{allow: false}, creator, "https://sqs/create-order", nil)

	consumer.Handle(context.Background(), orderMessage(t))

	// No downstream handler ran.
	assert.Empty(t, creator.created)
	require.Len(t, replier.replies, 1)
	reply, ok := replier.replies[0].(errorReply)
	require.True(t, ok)
	assert.Equal(t, "Unauthorized", reply.Error)
	assert.Equal(t, []string{"rh-1"}, replier.acked)
}

func TestHandleSagaFailure(t *testing.T) {
	replier := &mockReplier{}
	creator := &mockCreator{createErr: assert.AnError}
	consumer := NewCreateOrderConsumer(replier, &mockGuard{allow: true}, creator, "https://sqs/create-order", nil)

	consumer.Handle(context.Background(), orderMessage(t))

	require.Len(t, replier.replies, 1)
	_, ok := replier.replies[0].(errorReply)
	assert.True(t, ok)
	assert.Equal(t, []string{"rh-1"}, replier.acked)
}
