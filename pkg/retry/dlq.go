package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DLQMessage wraps a lifecycle envelope whose publish attempts were all
// exhausted. The original payload is preserved verbatim so the envelope
// can be replayed onto its original topic.
type DLQMessage struct {
	// ID is the envelope ID of the failed lifecycle event
	ID string `json:"id"`
	// OriginalTopic is the lifecycle topic the envelope was bound for
	OriginalTopic string `json:"original_topic"`
	// OriginalKey is the partition key (one partition per campus event)
	OriginalKey string `json:"original_key"`
	// Payload is the marshalled lifecycle envelope
	Payload json.RawMessage `json:"payload"`
	// Headers are the original message headers
	Headers map[string]string `json:"headers,omitempty"`
	// Error is the error message from the last attempt
	Error string `json:"error"`
	// Attempts is the number of publish attempts made
	Attempts int `json:"attempts"`
	// FirstAttemptAt is when the first attempt was made
	FirstAttemptAt time.Time `json:"first_attempt_at"`
	// LastAttemptAt is when the last attempt was made
	LastAttemptAt time.Time `json:"last_attempt_at"`
	// MovedToDLQAt is when the message was parked
	MovedToDLQAt time.Time `json:"moved_to_dlq_at"`
	// Source is the service that parked the message
	Source string `json:"source"`
}

// DLQConfig contains configuration for DLQ publishing
type DLQConfig struct {
	// TopicSuffix is appended to the original topic (default: ".dlq")
	TopicSuffix string
	// Source is the service name stamped on parked messages
	Source string
}

// DefaultDLQConfig returns default DLQ configuration
func DefaultDLQConfig() *DLQConfig {
	return &DLQConfig{
		TopicSuffix: ".dlq",
		Source:      "campushub",
	}
}

// JSONPublisher publishes a JSON-marshalled record to a topic
type JSONPublisher interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// KafkaDLQPublisher parks exhausted lifecycle envelopes on a sibling
// dead-letter topic
type KafkaDLQPublisher struct {
	producer JSONPublisher
	config   *DLQConfig
}

// NewKafkaDLQPublisher creates a new Kafka DLQ publisher
func NewKafkaDLQPublisher(producer JSONPublisher, config *DLQConfig) *KafkaDLQPublisher {
	if config == nil {
		config = DefaultDLQConfig()
	}
	if config.TopicSuffix == "" {
		config.TopicSuffix = ".dlq"
	}
	return &KafkaDLQPublisher{
		producer: producer,
		config:   config,
	}
}

// PublishToDLQ parks a message on the dead-letter topic, keyed by the
// original partition key so replay preserves per-event ordering
func (p *KafkaDLQPublisher) PublishToDLQ(ctx context.Context, msg *DLQMessage) error {
	if msg == nil {
		return fmt.Errorf("DLQ message cannot be nil")
	}

	dlqTopic := p.DLQTopic(msg.OriginalTopic)
	msg.MovedToDLQAt = time.Now()
	msg.Source = p.config.Source

	headers := map[string]string{
		"content_type":    "application/json",
		"original_topic":  msg.OriginalTopic,
		"error":           msg.Error,
		"attempts":        fmt.Sprintf("%d", msg.Attempts),
		"moved_to_dlq_at": msg.MovedToDLQAt.Format(time.RFC3339),
		"source":          msg.Source,
	}

	for k, v := range msg.Headers {
		if _, exists := headers[k]; !exists {
			headers["original_"+k] = v
		}
	}

	return p.producer.ProduceJSON(ctx, dlqTopic, msg.OriginalKey, msg, headers)
}

// DLQTopic returns the dead-letter topic for an original topic
func (p *KafkaDLQPublisher) DLQTopic(originalTopic string) string {
	return originalTopic + p.config.TopicSuffix
}
