package consumer

import (
	"context"
	"encoding/json"

	"github.com/orderhub/backend/services/billing-service/models"
	"github.com/orderhub/backend/services/common/broker"
	"go.uber.org/zap"
)

// BillingProcessor is the billing logic the consumer drives.
type BillingProcessor interface {
	ProcessOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
}

// Acknowledger is the broker surface the consumer needs.
type Acknowledger interface {
	Acknowledge(ctx context.Context, queueURL, receiptHandle string) error
}

// snsEnvelope unwraps the SNS → SQS message wrapper.
type snsEnvelope struct {
	Message string `json:"Message"`
}

// BillingConsumer handles order-created notifications.
//
// Policy: the message is acknowledged after processing returns, whether
// or not billing succeeded. Billing failures surface through logging
// only; the notification is never requeued for them.
type BillingConsumer struct {
	broker   Acknowledger
	service  BillingProcessor
	queueURL string
	logger   *zap.Logger
}

func NewBillingConsumer(b Acknowledger, service BillingProcessor, queueURL string, logger *zap.Logger) *BillingConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingConsumer{broker: b, service: service, queueURL: queueURL, logger: logger}
}

// Handle processes one notification.
func (c *BillingConsumer) Handle(ctx context.Context, msg broker.Message) {
	defer func() {
		if err := c.broker.Acknowledge(ctx, c.queueURL, msg.ReceiptHandle); err != nil {
			c.logger.Error("failed to acknowledge billing message", zap.Error(err))
		}
	}()

	body := msg.Body
	var envelope snsEnvelope
	if err := json.Unmarshal(msg.Body, &envelope); err == nil && envelope.Message != "" {
		body = []byte(envelope.Message)
	}

	var event models.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Error("unparseable order-created notification", zap.Error(err))
		return
	}

	if err := c.service.ProcessOrderCreated(ctx, &event); err != nil {
		c.logger.Error("billing processing failed",
			zap.String("order_name", event.Request.Name), zap.Error(err))
	}
}
