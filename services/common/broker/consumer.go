package broker

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// Handler processes one inbound message. Acknowledgement is the
// handler's responsibility; unacknowledged messages become visible
// again after the queue's visibility timeout.
type Handler func(ctx context.Context, msg Message)

// Consume long-polls queueURL and invokes handler for every received
// message until ctx is cancelled.
func (c *Client) Consume(ctx context.Context, queueURL string, handler Handler) {
	c.logger.Info("broker consumer started", zap.String("queue", queueURL))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("broker consumer shutting down", zap.String("queue", queueURL))
			return
		default:
			c.poll(ctx, queueURL, handler)
		}
	}
}

func (c *Client) poll(ctx context.Context, queueURL string, handler Handler) {
	output, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       5, // long polling
		MessageAttributeNames: []string{attrCorrelationID, attrReplyTo},
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("SQS receive error", zap.String("queue", queueURL), zap.Error(err))
		time.Sleep(5 * time.Second)
		return
	}

	for _, raw := range output.Messages {
		if raw.Body == nil || raw.ReceiptHandle == nil {
			c.logger.Error("received SQS message without body or receipt handle")
			continue
		}
		handler(ctx, Message{
			Body:          []byte(*raw.Body),
			ReceiptHandle: *raw.ReceiptHandle,
			CorrelationID: messageAttribute(raw, attrCorrelationID),
			ReplyTo:       messageAttribute(raw, attrReplyTo),
		})
	}
}
