package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/luxebeauty/salonbook/libs/kafkax"
)

// Event types emitted on ledger mutations. Downstream consumers (marketing
// content generation, notifications) subscribe per topic.
const (
	TypeBooked        = "booking.appointment.booked.v1"
	TypeRescheduled   = "booking.appointment.rescheduled.v1"
	TypeStatusChanged = "booking.appointment.status_changed.v1"
	TypeCancelled     = "booking.appointment.cancelled.v1"
	TypeDeleted       = "booking.appointment.deleted.v1"
	TypeOpenSlots     = "booking.slots.open.v1"
)

// Publisher writes booking lifecycle events to Kafka from a buffered queue so
// mutations never block on the broker. With no brokers configured every
// publish is a no-op.
type Publisher struct {
	brokers []string
	logger  *slog.Logger
	queue   chan kafka.Message
}

func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	return &Publisher{
		brokers: kafkax.SplitBrokers(brokers),
		logger:  logger,
		queue:   make(chan kafka.Message, 256),
	}
}

func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

// Publish serializes payload and enqueues it on the topic named by eventType,
// keyed by the aggregate id. Drops the event (with a log line) if the queue
// is full rather than stalling a booking.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) {
	if !p.Enabled() {
		return
	}

	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("event payload marshal failed", "event_type", eventType, "err", err)
		return
	}

	msg := kafka.Message{
		Topic: eventType,
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("event queue full, dropping event", "event_type", eventType, "key", key)
	}
}

func (p *Publisher) Run(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Warn("event publisher disabled (no kafka brokers configured)")
		return
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(p.brokers...),
		Balancer: &kafka.Hash{},
	}
	defer writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := writer.WriteMessages(ctx, msg); err != nil {
				p.logger.Error("event publish failed", "topic", msg.Topic, "err", err)
			}
		}
	}
}
