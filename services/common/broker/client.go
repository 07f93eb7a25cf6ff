package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message attribute names used to correlate requests with replies.
const (
	attrCorrelationID = "correlation_id"
	attrReplyTo       = "reply_to"
	attrEventType     = "event_type"
)

// ErrRequestTimeout is returned by SendRequest when no reply arrives
// within the caller's timeout.
var ErrRequestTimeout = fmt.Errorf("broker: request timed out waiting for reply")

// SQSAPI is the subset of the SQS client the broker uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SNSAPI is the subset of the SNS client the broker uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Message is a single inbound queue message. ReceiptHandle must be passed
// back to Acknowledge once the message has been handled.
type Message struct {
	Body          []byte
	ReceiptHandle string
	CorrelationID string
	ReplyTo       string
}

// Options configures a broker Client.
type Options struct {
	// TopicARN is the SNS topic used by Publish.
	TopicARN string
	// ReplyQueueURL is this process's private queue for request/reply
	// responses. Only needed by clients that call SendRequest.
	ReplyQueueURL string
	Logger        *zap.Logger
}

// Client wraps SQS and SNS into the request/reply, publish and
// acknowledge operations the services are written against.
//
// Request/reply rides on plain SQS queues: each request carries a
// generated correlation id plus the sender's reply queue URL as message
// attributes, and a single reply loop per process matches inbound
// replies to the goroutine that is waiting on them.
type Client struct {
	sqs     SQSAPI
	sns     SNSAPI
	opts    Options
	logger  *zap.Logger
	mu      sync.Mutex
	pending map[string]chan []byte
}

// New creates a broker client from an AWS config.
func New(cfg aws.Config, opts Options) *Client {
	return newClient(sqs.NewFromConfig(cfg), sns.NewFromConfig(cfg), opts)
}

func newClient(sqsClient SQSAPI, snsClient SNSAPI, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		sqs:     sqsClient,
		sns:     snsClient,
		opts:    opts,
		logger:  log,
		pending: make(map[string]chan []byte),
	}
}

// Publish sends payload to the configured SNS topic and waits for the
// broker to accept it. It does not wait for any consumer.
func (c *Client) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if c.opts.TopicARN == "" {
		return fmt.Errorf("broker: no topic ARN configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal publish payload: %w", err)
	}

	_, err = c.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.opts.TopicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			attrEventType: {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("broker: publish %s: %w", eventType, err)
	}
	return nil
}

// SendRequest sends payload to queueURL and blocks until a correlated
// reply arrives, the timeout elapses, or ctx is cancelled. The reply
// loop must be running (see StartReplyLoop).
func (c *Client) SendRequest(ctx context.Context, queueURL string, payload interface{}, timeout time.Duration) ([]byte, error) {
	if c.opts.ReplyQueueURL == "" {
		return nil, fmt.Errorf("broker: no reply queue configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("broker: marshal request payload: %w", err)
	}

	correlationID := uuid.NewString()
	replyCh := make(chan []byte, 1)

	c.mu.Lock()
	c.pending[correlationID] = replyCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, correlationID)
		c.mu.Unlock()
	}()

	_, err = c.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			attrCorrelationID: {
				DataType:    aws.String("String"),
				StringValue: aws.String(correlationID),
			},
			attrReplyTo: {
				DataType:    aws.String("String"),
				StringValue: aws.String(c.opts.ReplyQueueURL),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("broker: send request: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-timer.C:
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply sends payload back to the queue named by msg's reply_to
// attribute, carrying the original correlation id.
func (c *Client) Reply(ctx context.Context, msg Message, payload interface{}) error {
	if msg.ReplyTo == "" || msg.CorrelationID == "" {
		return fmt.Errorf("broker: message has no reply address")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal reply payload: %w", err)
	}

	_, err = c.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(msg.ReplyTo),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			attrCorrelationID: {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.CorrelationID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("broker: send reply: %w", err)
	}
	return nil
}

// Acknowledge deletes a handled message from its queue.
func (c *Client) Acknowledge(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("broker: acknowledge: %w", err)
	}
	return nil
}

// StartReplyLoop polls the reply queue and hands replies to the
// goroutines waiting in SendRequest. Run it once per process, usually
// as `go client.StartReplyLoop(ctx)`.
func (c *Client) StartReplyLoop(ctx context.Context) {
	c.logger.Info("broker reply loop started", zap.String("queue", c.opts.ReplyQueueURL))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("broker reply loop shutting down")
			return
		default:
			c.pollReplies(ctx)
		}
	}
}

func (c *Client) pollReplies(ctx context.Context) {
	output, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.opts.ReplyQueueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       5, // long polling
		MessageAttributeNames: []string{attrCorrelationID},
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("reply queue receive error", zap.Error(err))
		time.Sleep(5 * time.Second)
		return
	}

	for _, msg := range output.Messages {
		c.dispatchReply(msg)
		// Replies are deleted whether or not anyone is still waiting;
		// an unmatched reply means the requester already timed out.
		if msg.ReceiptHandle != nil {
			if err := c.Acknowledge(ctx, c.opts.ReplyQueueURL, *msg.ReceiptHandle); err != nil {
				c.logger.Error("failed to delete reply message", zap.Error(err))
			}
		}
	}
}

func (c *Client) dispatchReply(msg sqstypes.Message) {
	correlationID := messageAttribute(msg, attrCorrelationID)
	if correlationID == "" || msg.Body == nil {
		c.logger.Warn("discarding reply without correlation id")
		return
	}

	c.mu.Lock()
	replyCh, ok := c.pending[correlationID]
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("discarding unmatched reply", zap.String("correlation_id", correlationID))
		return
	}

	select {
	case replyCh <- []byte(*msg.Body):
	default:
	}
}

func messageAttribute(msg sqstypes.Message, name string) string {
	attr, ok := msg.MessageAttributes[name]
	if !ok || attr.StringValue == nil {
		return ""
	}
	return *attr.StringValue
}
