package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/pkg/kafka"
	"github.com/seulch/campushub/pkg/retry"
)

// LifecyclePublisher publishes lifecycle events for downstream consumers
// (reporting, audit)
type LifecyclePublisher interface {
	// Publish emits one lifecycle event keyed by the campus event ID
	Publish(ctx context.Context, eventType domain.LifecycleEventType, campusEventID string, payload interface{}) error

	// Close closes the publisher
	Close() error
}

// KafkaLifecyclePublisher implements LifecyclePublisher using Kafka.
// Publishes retry with backoff; exhausted messages go to the DLQ topic.
type KafkaLifecyclePublisher struct {
	producer    *kafka.Producer
	dlq         *retry.KafkaDLQPublisher
	retryConfig *retry.Config
	topic       string
	serviceName string
}

// LifecyclePublisherConfig contains configuration for the lifecycle publisher
type LifecyclePublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaLifecyclePublisher creates a Kafka lifecycle publisher
func NewKafkaLifecyclePublisher(ctx context.Context, cfg *LifecyclePublisherConfig) (*KafkaLifecyclePublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lifecycle publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "campushub-lifecycle"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "campushub"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "campushub-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	dlq := retry.NewKafkaDLQPublisher(producer, &retry.DLQConfig{
		TopicSuffix: ".dlq",
		Source:      serviceName,
	})

	return &KafkaLifecyclePublisher{
		producer: producer,
		dlq:      dlq,
		retryConfig: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// Publish emits one lifecycle event keyed by the campus event ID
func (p *KafkaLifecyclePublisher) Publish(ctx context.Context, eventType domain.LifecycleEventType, campusEventID string, payload interface{}) error {
	envelopeID := uuid.New().String()
	event := domain.NewLifecycleEvent(eventType, campusEventID, envelopeID, payload)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     envelopeID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	result := retry.Do(ctx, p.retryConfig, func(ctx context.Context) error {
		return p.producer.Produce(ctx, msg)
	})
	if result.Err == nil {
		return nil
	}

	errMsg := result.Err.Error()
	if result.LastError != nil {
		errMsg = result.LastError.Error()
	}
	dlqErr := p.dlq.PublishToDLQ(ctx, &retry.DLQMessage{
		ID:             envelopeID,
		OriginalTopic:  p.topic,
		OriginalKey:    event.Key(),
		Payload:        value,
		Headers:        headers,
		Error:          errMsg,
		Attempts:       result.Attempts,
		FirstAttemptAt: time.Now().Add(-result.TotalDuration),
		LastAttemptAt:  time.Now(),
	})
	if dlqErr != nil {
		return fmt.Errorf("failed to publish %s event and DLQ fallback failed: %w", eventType, dlqErr)
	}
	return fmt.Errorf("failed to publish %s event, moved to DLQ: %w", eventType, result.Err)
}

// Close closes the publisher
func (p *KafkaLifecyclePublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpLifecyclePublisher is a no-op implementation for tests and for
// running without brokers
type NoOpLifecyclePublisher struct{}

// NewNoOpLifecyclePublisher creates a new no-op lifecycle publisher
func NewNoOpLifecyclePublisher() *NoOpLifecyclePublisher {
	return &NoOpLifecyclePublisher{}
}

// Publish is a no-op
func (p *NoOpLifecyclePublisher) Publish(ctx context.Context, eventType domain.LifecycleEventType, campusEventID string, payload interface{}) error {
	return nil
}

// Close is a no-op
func (p *NoOpLifecyclePublisher) Close() error {
	return nil
}
