// Package kafka publishes check-in audit events to a Kafka topic so desk
// dashboards can follow issuance in real time.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "regdesk/pkg/platform/audit"
)

// Publisher produces one record per event, keyed by participant so all events
// for a participant land on the same partition.
type Publisher struct {
	client          *kgo.Client
	topic           string
	logger          *slog.Logger
	deliveryTimeout time.Duration
}

// DefaultDeliveryTimeout bounds how long one event may wait for a broker ack.
const DefaultDeliveryTimeout = 5 * time.Second

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithDeliveryTimeout overrides DefaultDeliveryTimeout.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.deliveryTimeout = d
	}
}

// New configures a producer for the given brokers. Brokers are dialled lazily.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	p := &Publisher{topic: topic, deliveryTimeout: DefaultDeliveryTimeout}
	for _, opt := range opts {
		opt(p)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordDeliveryTimeout(p.deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p.client = client
	return p, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for name, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", name, t.Err)
		}
	}
	return nil
}

// Emit synchronously produces the event and gives up after the delivery
// timeout, also when ctx has no deadline of its own.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Key:       []byte(event.ParticipantID),
		Value:     payload,
		Timestamp: event.Timestamp,
	}
	produceCtx, cancel := context.WithTimeout(ctx, p.deliveryTimeout)
	defer cancel()
	if err := p.client.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "failed to produce audit event",
				"action", event.Action,
				"topic", p.topic,
				"error", err,
			)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Ping verifies at least one broker is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close() {
	p.client.Close()
}
