package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
)

// Message is the body published for every newly detected notification.
type Message struct {
	NotificationID int64 `json:"notification_id"`
}

// Broker wraps one RabbitMQ connection and channel bound to a durable queue.
type Broker struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	name   string
	logger *slog.Logger
	mu     sync.Mutex
}

func Open(url, name string, logger *slog.Logger) (*Broker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrapf(err, "declare queue %s", name)
	}
	return &Broker{conn: conn, ch: ch, name: name, logger: logger}, nil
}

func (b *Broker) Close() error {
	if err := b.ch.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}

// Publish enqueues a notification id as a persistent JSON message.
func (b *Broker) Publish(ctx context.Context, notificationID int64) error {
	body, err := json.Marshal(Message{NotificationID: notificationID})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.ch.PublishWithContext(ctx, "", b.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish notification %d", notificationID)
	}
	return nil
}

// HandlerFunc processes one decoded message.
type HandlerFunc func(ctx context.Context, msg Message) error

// Consume delivers messages one at a time until ctx is cancelled or the channel closes.
// Client errors (4xx class) and malformed bodies are dropped; other failures are
// requeued once and dropped on redelivery.
func (b *Broker) Consume(ctx context.Context, handle HandlerFunc) error {
	if err := b.ch.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "set qos")
	}
	msgs, err := b.ch.Consume(b.name, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "register consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			b.process(ctx, d, handle)
		}
	}
}

func (b *Broker) process(ctx context.Context, d amqp.Delivery, handle HandlerFunc) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.NotificationID <= 0 {
		b.logger.Error("Failed to decode queue message", "error", err, "body", string(d.Body))
		d.Nack(false, false)
		return
	}

	err := handle(ctx, msg)
	if err == nil {
		d.Ack(false)
		return
	}

	requeue := apperr.Status(err) >= 500 && !d.Redelivered
	b.logger.Error("Failed to process notification", "notification_id", msg.NotificationID, "error", err, "requeue", requeue)
	d.Nack(false, requeue)
}
