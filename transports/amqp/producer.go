package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/routeline-go/exchange"
)

// publishChannel is the subset of *amqp.Channel the producer uses. Tests
// substitute a mock.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	Close() error
}

// Producer is a pipeline stage that publishes the In body of every exchange
// it processes to a RabbitMQ exchange with a fixed routing key. It implements
// the service lifecycle: Start dials the broker, Stop closes the channel and
// connection.
type Producer struct {
	url            string
	exchangeName   string
	routingKey     string
	mandatory      bool
	reliable       bool
	confirmTimeout time.Duration
	logger         *slog.Logger

	mu       sync.RWMutex
	conn     *amqp.Connection
	channel  publishChannel
	confirms chan amqp.Confirmation
}

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithExchange sets the AMQP exchange to publish to. Defaults to the default
// exchange (direct queue delivery via the routing key).
func WithExchange(name string) ProducerOption {
	return func(p *Producer) {
		p.exchangeName = name
	}
}

// WithRoutingKey sets the routing key.
func WithRoutingKey(key string) ProducerOption {
	return func(p *Producer) {
		p.routingKey = key
	}
}

// WithMandatory sets the mandatory publish flag.
func WithMandatory(mandatory bool) ProducerOption {
	return func(p *Producer) {
		p.mandatory = mandatory
	}
}

// WithReliablePublishing enables publisher confirms. Each publish then waits
// for a broker acknowledgment.
func WithReliablePublishing(reliable bool) ProducerOption {
	return func(p *Producer) {
		p.reliable = reliable
	}
}

// WithProducerLogger sets the logger.
func WithProducerLogger(logger *slog.Logger) ProducerOption {
	return func(p *Producer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProducer creates a producer for the given broker URL. The connection is
// established by Start.
func NewProducer(url string, opts ...ProducerOption) *Producer {
	p := &Producer{
		url:            url,
		confirmTimeout: 5 * time.Second,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start dials the broker and opens the publishing channel.
func (p *Producer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	p.conn = conn
	p.channel = channel

	if p.reliable {
		if err := channel.Confirm(false); err != nil {
			channel.Close()
			conn.Close()
			p.conn = nil
			p.channel = nil
			return fmt.Errorf("failed to enable publisher confirms: %w", err)
		}
		p.confirms = channel.NotifyPublish(make(chan amqp.Confirmation, 1))
	}

	p.logger.Info("amqp producer started",
		"exchange", p.exchangeName,
		"routingKey", p.routingKey)
	return nil
}

// Stop closes the channel and connection.
func (p *Producer) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}

	err := p.channel.Close()
	if p.conn != nil {
		if connErr := p.conn.Close(); err == nil {
			err = connErr
		}
		p.conn = nil
	}
	p.channel = nil
	p.confirms = nil

	if err != nil {
		return fmt.Errorf("failed to close amqp producer: %w", err)
	}

	p.logger.Info("amqp producer stopped")
	return nil
}

// Process implements pipeline.Processor. The In body is serialized as JSON
// unless it is already a byte slice or string; the exchange ID travels as the
// AMQP MessageId and the In headers as the AMQP headers table.
func (p *Producer) Process(ctx context.Context, ex *exchange.Exchange) error {
	p.mu.RLock()
	channel := p.channel
	confirms := p.confirms
	p.mu.RUnlock()

	if channel == nil {
		return fmt.Errorf("amqp producer not started")
	}

	body, contentType, err := encodeBody(ex.In().Body)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		Headers:      amqp.Table(ex.In().Headers()),
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    ex.ID(),
		Timestamp:    time.Now(),
		Body:         body,
	}

	err = channel.PublishWithContext(ctx, p.exchangeName, p.routingKey, p.mandatory, false, publishing)
	if err != nil {
		return fmt.Errorf("failed to publish exchange %s: %w", ex.ID(), err)
	}

	if confirms != nil {
		select {
		case confirm := <-confirms:
			if !confirm.Ack {
				return fmt.Errorf("exchange %s was not acknowledged by broker", ex.ID())
			}
		case <-time.After(p.confirmTimeout):
			return fmt.Errorf("timeout waiting for publish confirmation of exchange %s", ex.ID())
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.logger.Debug("published exchange",
		"exchangeId", ex.ID(),
		"exchange", p.exchangeName,
		"routingKey", p.routingKey)
	return nil
}

func encodeBody(body interface{}) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "application/octet-stream", nil
	case []byte:
		return b, "application/octet-stream", nil
	case string:
		return []byte(b), "text/plain", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to serialize body: %w", err)
		}
		return data, "application/json", nil
	}
}
