// Package kafka publishes order workflow events for downstream consumers.
// It backs the emit_webhook effect: every committed transition becomes one
// message on the order events topic, keyed by order ID so transitions of the
// same order stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/workflow"

	"github.com/segmentio/kafka-go"
)

// orderStatusChangedEvent is the wire format of a transition notification.
type orderStatusChangedEvent struct {
	OrderID    string    `json:"order_id"`
	FromState  string    `json:"from_state"`
	ToState    string    `json:"to_state"`
	Actor      string    `json:"actor,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// messageWriter is the subset of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// WebhookPublisher emits order status change events to Kafka.
type WebhookPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWebhookPublisher creates a publisher for the given brokers and topic.
// Messages are hashed by order ID so each order's events land on one partition.
func NewWebhookPublisher(brokers []string, topic string, logger *slog.Logger) *WebhookPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger.With("component", "webhook_publisher"),
	}
}

// PublishTransition sends one status change event. The signature matches
// workflow.Effect so the publisher can replace the emit_webhook stub, making
// the event part of the transition: a broker failure fails the transition.
func (p *WebhookPublisher) PublishTransition(ctx context.Context, tc workflow.TransitionContext) error {
	event := orderStatusChangedEvent{
		OrderID:    tc.Order.ID().String(),
		FromState:  tc.From.String(),
		ToState:    tc.To.String(),
		Actor:      tc.Actor,
		Note:       tc.Note,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status change event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish status change event: %w", err)
	}

	p.logger.DebugContext(ctx, "status change event published",
		"order_id", event.OrderID,
		"from", event.FromState,
		"to", event.ToState,
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *WebhookPublisher) Close() error {
	return p.writer.Close()
}
