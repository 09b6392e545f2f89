package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/metrics"
)

// Publisher hands domain events to the broker. Publishing is best effort:
// callers log failures and never fail the request because of them.
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// NopPublisher discards every event. It is used when no broker URL is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// AMQPPublisher publishes persistent JSON messages to RabbitMQ. The
// connection is opened lazily, reused across publishes and reopened
// after a failure.
type AMQPPublisher struct {
	url string
	log logrus.FieldLogger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

// NewAMQPPublisher returns a publisher for the broker at url. No
// connection is made until the first Publish.
func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log, declared: map[string]bool{}}
}

// Publish marshals event and sends it to the named durable queue.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) (err error) {
	defer func() {
		metrics.EventPublished(queue, err)
		if err != nil {
			p.log.WithError(err).WithField("queue", queue).Warn("rabbitmq: publish failed")
		}
	}()

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if !p.declared[queue] {
		// Durable so messages survive broker restarts.
		if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return err
		}
		p.declared[queue] = true
	}
	err = ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		p.reset()
	}
	return err
}

// channel returns the open channel, dialing first if needed. Callers
// hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(2 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
	p.declared = map[string]bool{}
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
