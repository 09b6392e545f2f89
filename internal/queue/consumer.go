package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RatingConsumer listens on the rating.submitted queue and turns each
// event into an owner notification. Notifications are currently written
// to the structured log.
type RatingConsumer struct {
	URL   string
	Queue string
	Log   logrus.FieldLogger
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled. Connection failures are retried with
// exponential backoff capped at 30s; a message that cannot be decoded is
// rejected without requeue so it cannot loop.
func (rc RatingConsumer) Run(ctx context.Context) error {
	queue := rc.Queue
	if queue == "" {
		queue = RatingSubmittedQueue
	}
	backoff := time.Second
	for {
		conn, err := amqp.DialConfig(rc.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
		if err != nil {
			rc.Log.WithError(err).Warnf("rating-consumer: failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = rc.consumeLoop(ctx, conn, queue)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rc.Log.WithError(err).Warn("rating-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (rc RatingConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		rc.Log.WithError(err).Warn("rating-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := rc.handleMessage(d.Body); err != nil {
				rc.Log.WithError(err).Error("rating-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (rc RatingConsumer) handleMessage(body []byte) error {
	var ev RatingSubmittedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.StoreID == 0 || ev.UserID == 0 {
		return errors.New("event is missing store_id or user_id")
	}
	fields := logrus.Fields{
		"store_id":     ev.StoreID,
		"user_id":      ev.UserID,
		"rating":       ev.Rating,
		"submitted_at": ev.SubmittedAt,
	}
	if ev.OverallRating != nil {
		fields["overall_rating"] = *ev.OverallRating
	}
	if ev.OwnerID == nil {
		rc.Log.WithFields(fields).Info("rating received for unowned store")
		return nil
	}
	fields["owner_id"] = *ev.OwnerID
	rc.Log.WithFields(fields).Info("owner notified of new rating")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
