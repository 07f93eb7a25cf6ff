package rpc

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin/binding"
	"github.com/orderhub/backend/services/common/broker"
	"github.com/orderhub/backend/services/order-service/models"
	"go.uber.org/zap"
)

// OrderCreator is the saga surface the consumer depends on.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
}

// MessageGuard authenticates an inbound message body.
type MessageGuard interface {
	AllowMessage(ctx context.Context, body []byte) (context.Context, error)
}

// Replier is the broker surface the consumer needs.
type Replier interface {
	Reply(ctx context.Context, msg broker.Message, payload interface{}) error
	Acknowledge(ctx context.Context, queueURL, receiptHandle string) error
}

type errorReply struct {
	Error string `json:"error"`
}

// CreateOrderConsumer serves order creation over the broker's
// request/reply channel. The request body is the HTTP payload plus an
// "authentication" field the guard's message adapter reads the bearer
// token from.
type CreateOrderConsumer struct {
	broker   Replier
	guard    MessageGuard
	orders   OrderCreator
	queueURL string
	logger   *zap.Logger
}

func NewCreateOrderConsumer(b Replier, guard MessageGuard, orders OrderCreator, queueURL string, logger *zap.Logger) *CreateOrderConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateOrderConsumer{broker: b, guard: guard, orders: orders, queueURL: queueURL, logger: logger}
}

// Handle processes one create-order request message.
func (c *CreateOrderConsumer) Handle(ctx context.Context, msg broker.Message) {
	handlerCtx, err := c.guard.AllowMessage(ctx, msg.Body)
	if err != nil {
		c.reply(ctx, msg, errorReply{Error: "Unauthorized"})
		c.ack(ctx, msg)
		return
	}

	var req models.CreateOrderRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		c.reply(ctx, msg, errorReply{Error: "Invalid request"})
		c.ack(ctx, msg)
		return
	}
	// Same binding rules as the HTTP path; both entry points must
	// reject the same payloads.
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		c.reply(ctx, msg, errorReply{Error: "Invalid request"})
		c.ack(ctx, msg)
		return
	}

	order, err := c.orders.CreateOrder(handlerCtx, &req)
	if err != nil {
		c.logger.Error("order creation over broker failed", zap.Error(err))
		c.reply(ctx, msg, errorReply{Error: err.Error()})
		c.ack(ctx, msg)
		return
	}

	c.reply(ctx, msg, order)
	c.ack(ctx, msg)
}

func (c *CreateOrderConsumer) reply(ctx context.Context, msg broker.Message, payload interface{}) {
	if msg.ReplyTo == "" {
		return
	}
	if err := c.broker.Reply(ctx, msg, payload); err != nil {
		c.logger.Error("failed to send create-order reply", zap.Error(err))
	}
}

func (c *CreateOrderConsumer) ack(ctx context.Context, msg broker.Message) {
	if err := c.broker.Acknowledge(ctx, c.queueURL, msg.ReceiptHandle); err != nil {
		c.logger.Error("failed to acknowledge create-order request", zap.Error(err))
	}
}
