package rpc

import (
	"context"
	"encoding/json"

	"github.com/orderhub/backend/services/common/authguard"
	"github.com/orderhub/backend/services/common/broker"
	"go.uber.org/zap"
)

// Validator resolves a bearer token to an identity.
type Validator interface {
	Validate(ctx context.Context, token string) (*authguard.Identity, error)
}

// Replier is the broker surface the responder needs.
type Replier interface {
	Reply(ctx context.Context, msg broker.Message, payload interface{}) error
	Acknowledge(ctx context.Context, queueURL, receiptHandle string) error
}

type validationRequest struct {
	Authentication string `json:"authentication"`
}

type errorReply struct {
	Error string `json:"error"`
}

// ValidateResponder answers credential validation requests arriving on
// the auth service's request queue.
type ValidateResponder struct {
	broker    Replier
	validator Validator
	queueURL  string
	logger    *zap.Logger
}

func NewValidateResponder(b Replier, validator Validator, queueURL string, logger *zap.Logger) *ValidateResponder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidateResponder{broker: b, validator: validator, queueURL: queueURL, logger: logger}
}

// Handle processes one validation request. Validation is idempotent,
// so a redelivered request just produces the same reply again.
func (r *ValidateResponder) Handle(ctx context.Context, msg broker.Message) {
	var req validationRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		r.logger.Error("unparseable validation request", zap.Error(err))
		// Unparseable requests can never succeed; drop them.
		r.ack(ctx, msg)
		return
	}

	var reply interface{}
	identity, err := r.validator.Validate(ctx, req.Authentication)
	if err != nil {
		reply = errorReply{Error: "Unauthorized"}
	} else {
		reply = identity
	}

	if err := r.broker.Reply(ctx, msg, reply); err != nil {
		// Leave the request unacknowledged; the caller may still be
		// waiting and redelivery gives us another chance to answer.
		r.logger.Error("failed to send validation reply", zap.Error(err))
		return
	}

	r.ack(ctx, msg)
}

func (r *ValidateResponder) ack(ctx context.Context, msg broker.Message) {
	if err := r.broker.Acknowledge(ctx, r.queueURL, msg.ReceiptHandle); err != nil {
		r.logger.Error("failed to acknowledge validation request", zap.Error(err))
	}
}
