package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"airspace/internal/platform/kafka/producer"
	audit "airspace/pkg/platform/audit"
)

// Publisher emits audit events to a sink. Implementations must be safe for
// concurrent use; emission failures are reported, never fatal to the caller.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// KafkaPublisher serializes events as JSON records keyed by wallet address,
// preserving per-wallet ordering within a partition.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher constructs a Kafka-backed audit publisher.
func NewKafkaPublisher(p *producer.Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, logger: logger}
}

type eventPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Wallet    string    `json:"wallet,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Mode      string    `json:"mode,omitempty"`
}

// Emit publishes the event asynchronously; delivery failures are logged by
// the producer callback.
func (k *KafkaPublisher) Emit(_ context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(eventPayload{
		Timestamp: event.Timestamp,
		Wallet:    event.Wallet.String(),
		Subject:   event.Subject,
		Action:    string(event.Action),
		Decision:  event.Decision,
		Reason:    event.Reason,
		Mode:      event.Mode,
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	return k.producer.ProduceAsync(&producer.Message{
		Topic: k.topic,
		Key:   []byte(event.Wallet.String()),
		Value: value,
	})
}

// MemoryPublisher collects events in memory for tests and Kafka-less runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

// NewMemoryPublisher constructs an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Emit appends the event.
func (m *MemoryPublisher) Emit(_ context.Context, event audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of all emitted events.
func (m *MemoryPublisher) Events() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Event, len(m.events))
	copy(out, m.events)
	return out
}

// ByAction returns emitted events matching the given action.
func (m *MemoryPublisher) ByAction(action audit.Action) []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Event
	for _, e := range m.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
