package amqp

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glimte/routeline-go/exchange"
	"github.com/glimte/routeline-go/pipeline"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchangeName, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchangeName, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *mockChannel) Confirm(noWait bool) error {
	args := m.Called(noWait)
	return args.Error(0)
}

func (m *mockChannel) NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation {
	args := m.Called(confirm)
	return args.Get(0).(chan amqp.Confirmation)
}

func (m *mockChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestProducerProcess(t *testing.T) {
	t.Run("fails when not started", func(t *testing.T) {
		p := NewProducer("amqp://localhost")

		err := p.Process(context.Background(), exchange.New(exchange.InOnly))

		assert.ErrorContains(t, err, "not started")
	})

	t.Run("publishes the In body with exchange metadata", func(t *testing.T) {
		channel := &mockChannel{}
		p := NewProducer("amqp://localhost",
			WithExchange("orders"),
			WithRoutingKey("orders.created"),
		)
		p.channel = channel

		ex := exchange.New(exchange.InOnly)
		ex.In().Body = []byte("payload")
		ex.In().SetHeader("tenant", "acme")

		channel.On("PublishWithContext", mock.Anything, "orders", "orders.created", false, false,
			mock.MatchedBy(func(pub amqp.Publishing) bool {
				return pub.MessageId == ex.ID() &&
					string(pub.Body) == "payload" &&
					pub.Headers["tenant"] == "acme" &&
					pub.ContentType == "application/octet-stream"
			})).Return(nil)

		err := p.Process(context.Background(), ex)

		assert.NoError(t, err)
		channel.AssertExpectations(t)
	})

	t.Run("serializes structured bodies as JSON", func(t *testing.T) {
		channel := &mockChannel{}
		p := NewProducer("amqp://localhost", WithRoutingKey("q"))
		p.channel = channel

		ex := exchange.New(exchange.InOnly)
		ex.In().Body = map[string]string{"order": "42"}

		channel.On("PublishWithContext", mock.Anything, "", "q", false, false,
			mock.MatchedBy(func(pub amqp.Publishing) bool {
				return pub.ContentType == "application/json" &&
					string(pub.Body) == `{"order":"42"}`
			})).Return(nil)

		assert.NoError(t, p.Process(context.Background(), ex))
		channel.AssertExpectations(t)
	})

	t.Run("string bodies publish as text", func(t *testing.T) {
		channel := &mockChannel{}
		p := NewProducer("amqp://localhost")
		p.channel = channel

		ex := exchange.New(exchange.InOnly)
		ex.In().Body = "hello"

		channel.On("PublishWithContext", mock.Anything, "", "", false, false,
			mock.MatchedBy(func(pub amqp.Publishing) bool {
				return pub.ContentType == "text/plain" && string(pub.Body) == "hello"
			})).Return(nil)

		assert.NoError(t, p.Process(context.Background(), ex))
	})

	t.Run("wraps publish failures", func(t *testing.T) {
		channel := &mockChannel{}
		p := NewProducer("amqp://localhost")
		p.channel = channel

		channel.On("PublishWithContext", mock.Anything, "", "", false, false, mock.Anything).
			Return(assert.AnError)

		err := p.Process(context.Background(), exchange.New(exchange.InOnly))

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestProducerReliablePublishing(t *testing.T) {
	t.Run("waits for broker acknowledgment", func(t *testing.T) {
		channel := &mockChannel{}
		confirms := make(chan amqp.Confirmation, 1)
		confirms <- amqp.Confirmation{Ack: true, DeliveryTag: 1}

		p := NewProducer("amqp://localhost", WithReliablePublishing(true))
		p.channel = channel
		p.confirms = confirms

		channel.On("PublishWithContext", mock.Anything, "", "", false, false, mock.Anything).
			Return(nil)

		assert.NoError(t, p.Process(context.Background(), exchange.New(exchange.InOnly)))
	})

	t.Run("nack is an error", func(t *testing.T) {
		channel := &mockChannel{}
		confirms := make(chan amqp.Confirmation, 1)
		confirms <- amqp.Confirmation{Ack: false, DeliveryTag: 1}

		p := NewProducer("amqp://localhost", WithReliablePublishing(true))
		p.channel = channel
		p.confirms = confirms

		channel.On("PublishWithContext", mock.Anything, "", "", false, false, mock.Anything).
			Return(nil)

		err := p.Process(context.Background(), exchange.New(exchange.InOnly))

		assert.ErrorContains(t, err, "not acknowledged")
	})
}

func TestProducerLifecycle(t *testing.T) {
	t.Run("Stop closes the channel", func(t *testing.T) {
		channel := &mockChannel{}
		channel.On("Close").Return(nil)

		p := NewProducer("amqp://localhost")
		p.channel = channel

		require.NoError(t, p.Stop(context.Background()))
		assert.Nil(t, p.channel)
		channel.AssertExpectations(t)
	})

	t.Run("Stop without Start is a no-op", func(t *testing.T) {
		p := NewProducer("amqp://localhost")
		assert.NoError(t, p.Stop(context.Background()))
	})
}

// The producer must satisfy the stage and lifecycle contracts.
var (
	_ pipeline.Processor = (*Producer)(nil)
	_ pipeline.Service   = (*Producer)(nil)
)
