package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// DefaultLoanEventsQueue is the durable queue loan events are routed to.
const DefaultLoanEventsQueue = "library.loan_events"

// AMQPSink publishes loan events to RabbitMQ through the default exchange.
// The connection is opened lazily and re-dialled after a failed publish.
type AMQPSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPSink(url, queue string) *AMQPSink {
	if queue == "" {
		queue = DefaultLoanEventsQueue
	}
	return &AMQPSink{url: url, queue: queue}
}

// Deliver marshals the event and publishes it as a persistent message.
func (s *AMQPSink) Deliver(ctx context.Context, event domain.LoanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal loan event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureChannel(); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if err := s.ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.resetLocked()
		return fmt.Errorf("publish loan event: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
	return err
}

func (s *AMQPSink) ensureChannel() error {
	if s.ch != nil && !s.ch.IsClosed() {
		return nil
	}
	s.resetLocked()

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	s.conn, s.ch = conn, ch
	return nil
}

func (s *AMQPSink) resetLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
}
