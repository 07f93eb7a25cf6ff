package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake SQS ----

// fakeSQS echoes every request back as a reply on the receive channel,
// tagged with the request's correlation id.
type fakeSQS struct {
	sent     []*sqs.SendMessageInput
	deleted  []string
	receive  chan sqstypes.Message
	sendErr  error
	echoBody string
}

func newFakeSQS() *fakeSQS {
	return &fakeSQS{receive: make(chan sqstypes.Message, 16)}
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)

	if f.echoBody != "" {
		corr := params.MessageAttributes["correlation_id"]
		f.receive <- sqstypes.Message{
			Body:          aws.String(f.echoBody),
			ReceiptHandle: aws.String("rh-1"),
			MessageAttributes: map[string]sqstypes.MessageAttributeValue{
				"correlation_id": corr,
			},
		}
	}
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	select {
	case msg := <-f.receive:
		return &sqs.ReceiveMessageOutput{Messages: []sqstypes.Message{msg}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

// ---- fake SNS ----

type fakeSNS struct {
	published  []*sns.PublishInput
	publishErr error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, params)
	return &sns.PublishOutput{}, nil
}

// ---- tests ----

func TestPublish(t *testing.T) {
	fsns := &fakeSNS{}
	client := newClient(newFakeSQS(), fsns, Options{TopicARN: "arn:aws:sns:us-east-1:000000000000:orders"})

	err := client.Publish(context.Background(), "order.created", map[string]string{"hello": "world"})
	require.NoError(t, err)
	require.Len(t, fsns.published, 1)

	input := fsns.published[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:orders", aws.ToString(input.TopicArn))
	assert.Equal(t, "order.created", aws.ToString(input.MessageAttributes["event_type"].StringValue))

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(input.Message)), &body))
	assert.Equal(t, "world", body["hello"])
}

func TestPublishError(t *testing.T) {
	fsns := &fakeSNS{publishErr: assert.AnError}
	client := newClient(newFakeSQS(), fsns, Options{TopicARN: "arn:topic"})

	err := client.Publish(context.Background(), "order.created", map[string]string{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSendRequestRoundTrip(t *testing.T) {
	fsqs := newFakeSQS()
	fsqs.echoBody = `{"id":"u1","email":"a@b.com"}`
	client := newClient(fsqs, &fakeSNS{}, Options{ReplyQueueURL: "https://sqs/reply"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.StartReplyLoop(ctx)

	reply, err := client.SendRequest(ctx, "https://sqs/auth-validate", map[string]string{"authentication": "tok"}, 2*time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","email":"a@b.com"}`, string(reply))

	// The request carried a correlation id and our reply queue.
	require.Len(t, fsqs.sent, 1)
	sent := fsqs.sent[0]
	assert.NotEmpty(t, aws.ToString(sent.MessageAttributes["correlation_id"].StringValue))
	assert.Equal(t, "https://sqs/reply", aws.ToString(sent.MessageAttributes["reply_to"].StringValue))
}

func TestSendRequestTimeout(t *testing.T) {
	fsqs := newFakeSQS() // never echoes
	client := newClient(fsqs, &fakeSNS{}, Options{ReplyQueueURL: "https://sqs/reply"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.StartReplyLoop(ctx)

	_, err := client.SendRequest(ctx, "https://sqs/auth-validate", map[string]string{}, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrRequestTimeout)

	// The pending entry is cleaned up after the timeout.
	client.mu.Lock()
	assert.Empty(t, client.pending)
	client.mu.Unlock()
}

func TestSendRequestSendError(t *testing.T) {
	fsqs := newFakeSQS()
	fsqs.sendErr = assert.AnError
	client := newClient(fsqs, &fakeSNS{}, Options{ReplyQueueURL: "https://sqs/reply"})

	_, err := client.SendRequest(context.Background(), "https://sqs/q", map[string]string{}, time.Second)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReplyCarriesCorrelationID(t *testing.T) {
	fsqs := newFakeSQS()
	client := newClient(fsqs, &fakeSNS{}, Options{})

	msg := Message{CorrelationID: "corr-7", ReplyTo: "https://sqs/caller-reply"}
	err := client.Reply(context.Background(), msg, map[string]string{"id": "u1"})
	require.NoError(t, err)

	require.Len(t, fsqs.sent, 1)
	sent := fsqs.sent[0]
	assert.Equal(t, "https://sqs/caller-reply", aws.ToString(sent.QueueUrl))
	assert.Equal(t, "corr-7", aws.ToString(sent.MessageAttributes["correlation_id"].StringValue))
}

func TestReplyWithoutAddress(t *testing.T) {
	client := newClient(newFakeSQS(), &fakeSNS{}, Options{})

	err := client.Reply(context.Background(), Message{}, map[string]string{})
	assert.Error(t, err)
}

func TestAcknowledge(t *testing.T) {
	fsqs := newFakeSQS()
	client := newClient(fsqs, &fakeSNS{}, Options{})

	err := client.Acknowledge(context.Background(), "https://sqs/billing", "rh-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"rh-42"}, fsqs.deleted)
}
