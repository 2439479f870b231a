package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Booking lifecycle routing keys
const (
	BookingCreated          = "booking.created"
	BookingPaymentConfirmed = "booking.payment_confirmed"
	BookingCancelled        = "booking.cancelled"
	RefundInitiated         = "refund.initiated"
	RefundStatusChanged     = "refund.status_changed"
)

// Event is a booking lifecycle notification. Zero-valued IDs are omitted.
type Event struct {
	Type           string    `json:"type"`
	BookingID      int64     `json:"booking_id,omitempty"`
	RouteID        int64     `json:"route_id,omitempty"`
	PaymentID      int64     `json:"payment_id,omitempty"`
	CancellationID int64     `json:"cancellation_id,omitempty"`
	RefundID       int64     `json:"refund_id,omitempty"`
	Seats          int       `json:"seats,omitempty"`
	SeatsAvailable *int      `json:"seats_available,omitempty"`
	Status         string    `json:"status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events. Publishing is best effort: callers log failures
// and never roll back committed work because of them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. Used when RABBITMQ_URL is unset.
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// AMQPPublisher publishes events as persistent JSON messages to a topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishes
	ch       *amqp.Channel
	exchange string
	logger   *logrus.Logger
}

// NewAMQPPublisher dials the broker and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string, logger *logrus.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish sends the event with its Type as routing key
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"exchange":    p.exchange,
		"routing_key": event.Type,
		"booking_id":  event.BookingID,
	}).Debug("Published lifecycle event")
	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func newMessage(event Event) (amqp.Publishing, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}, nil
}
