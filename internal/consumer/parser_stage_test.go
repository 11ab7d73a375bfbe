package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/domain"
)

const testTimestamp int64 = 1766702551

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.Event, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func TestParserStage_Start_ForwardsEnvelopes(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	stage := NewParserStage(mockConsumer, mockParser, log)

	event := &domain.Event{
		EventID:   "evt-1",
		BrandID:   "brand-1",
		EventType: domain.EventPageView,
		SessionID: "sess-1",
		Timestamp: testTimestamp,
	}

	mockParser.On("Parse", []byte(`{"event_id": "evt-1"}`)).Return(event, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go stage.Start(ctx, in, out)

	in <- types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{"event_id": "evt-1"}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	select {
	case envelope := <-out:
		assert.Equal(t, "evt-1", envelope.Event.EventID)
		assert.Equal(t, "brand-1", envelope.Event.BrandID)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for envelope")
	}
}

func TestParserStage_Start_DeletesMalformedMessages(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	stage := NewParserStage(mockConsumer, mockParser, log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/events-queue")
	mockParser.On("Parse", []byte(`garbage`)).Return(nil, errors.New("failed to unmarshal message body"))
	mockConsumer.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(input *sqs.DeleteMessageInput) bool {
		return aws.ToString(input.ReceiptHandle) == "receipt-bad"
	})).Return(&sqs.DeleteMessageOutput{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go stage.Start(ctx, in, out)

	in <- types.Message{
		MessageId:     aws.String("msg-bad"),
		Body:          aws.String(`garbage`),
		ReceiptHandle: aws.String("receipt-bad"),
	}

	// Malformed messages never reach the next stage.
	select {
	case envelope := <-out:
		t.Fatalf("Unexpected envelope for malformed message: %+v", envelope)
	case <-time.After(100 * time.Millisecond):
	}

	mockConsumer.AssertCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestParserStage_EnvelopeAckDeletesMessage(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	stage := NewParserStage(mockConsumer, mockParser, log)

	event := &domain.Event{EventID: "evt-1", Timestamp: testTimestamp}

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/events-queue")
	mockParser.On("Parse", mock.Anything).Return(event, nil)
	mockConsumer.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(input *sqs.DeleteMessageInput) bool {
		return aws.ToString(input.ReceiptHandle) == "receipt-1"
	})).Return(&sqs.DeleteMessageOutput{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go stage.Start(ctx, in, out)

	in <- types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	select {
	case envelope := <-out:
		assert.NoError(t, envelope.Ack(ctx))
		mockConsumer.AssertCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
		// Nack is a no-op; visibility timeout handles redelivery.
		assert.NoError(t, envelope.Nack(ctx))
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for envelope")
	}
}

func TestParserStage_Start_ClosesOutputWhenInputCloses(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	stage := NewParserStage(mockConsumer, mockParser, log)

	ctx := context.Background()
	in := make(chan types.Message)
	out := make(chan *Envelope)

	go stage.Start(ctx, in, out)

	close(in)

	select {
	case _, open := <-out:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("Output channel was not closed")
	}
}
