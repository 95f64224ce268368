package retry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// capturingPublisher records ProduceJSON calls for assertions
type capturingPublisher struct {
	topics  []string
	keys    []string
	data    []interface{}
	headers []map[string]string
	err     error
}

func (p *capturingPublisher) ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.data = append(p.data, data)
	p.headers = append(p.headers, headers)
	return nil
}

// lifecycleEnvelope mirrors the shape parked by the lifecycle publisher
func lifecycleEnvelope(t *testing.T) (json.RawMessage, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"event_id":        "env-1",
		"type":            "registration.promoted",
		"campus_event_id": "event-42",
		"occurred_at":     time.Now().Format(time.RFC3339),
		"version":         "1.0",
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload, "event:event-42"
}

func TestDLQ_DefaultConfig(t *testing.T) {
	config := DefaultDLQConfig()

	if config.TopicSuffix != ".dlq" {
		t.Errorf("TopicSuffix = %s, want .dlq", config.TopicSuffix)
	}
	if config.Source != "campushub" {
		t.Errorf("Source = %s", config.Source)
	}
}

func TestDLQ_TopicNaming(t *testing.T) {
	p := NewKafkaDLQPublisher(&capturingPublisher{}, &DLQConfig{TopicSuffix: ".dlq"})

	if got := p.DLQTopic("campushub-lifecycle"); got != "campushub-lifecycle.dlq" {
		t.Errorf("DLQTopic = %s", got)
	}

	// Empty suffix falls back to the default
	p = NewKafkaDLQPublisher(&capturingPublisher{}, &DLQConfig{})
	if got := p.DLQTopic("campushub-lifecycle"); got != "campushub-lifecycle.dlq" {
		t.Errorf("DLQTopic with empty suffix = %s", got)
	}
}

func TestDLQ_PublishParksEnvelope(t *testing.T) {
	sink := &capturingPublisher{}
	p := NewKafkaDLQPublisher(sink, &DLQConfig{TopicSuffix: ".dlq", Source: "campushub"})

	payload, key := lifecycleEnvelope(t)
	msg := &DLQMessage{
		ID:            "env-1",
		OriginalTopic: "campushub-lifecycle",
		OriginalKey:   key,
		Payload:       payload,
		Headers: map[string]string{
			"event_type": "registration.promoted",
		},
		Error:          "broker unavailable",
		Attempts:       4,
		FirstAttemptAt: time.Now().Add(-10 * time.Second),
		LastAttemptAt:  time.Now(),
	}

	if err := p.PublishToDLQ(context.Background(), msg); err != nil {
		t.Fatalf("PublishToDLQ: %v", err)
	}

	if len(sink.topics) != 1 || sink.topics[0] != "campushub-lifecycle.dlq" {
		t.Fatalf("topics = %v", sink.topics)
	}
	// The partition key survives so replay preserves per-event ordering
	if sink.keys[0] != "event:event-42" {
		t.Errorf("key = %s", sink.keys[0])
	}

	parked, ok := sink.data[0].(*DLQMessage)
	if !ok {
		t.Fatalf("parked data type %T", sink.data[0])
	}
	if string(parked.Payload) != string(payload) {
		t.Error("payload should be preserved verbatim")
	}
	if parked.Source != "campushub" {
		t.Errorf("Source = %s", parked.Source)
	}
	if parked.MovedToDLQAt.IsZero() {
		t.Error("MovedToDLQAt should be stamped")
	}

	headers := sink.headers[0]
	if headers["original_topic"] != "campushub-lifecycle" {
		t.Errorf("original_topic header = %s", headers["original_topic"])
	}
	if headers["error"] != "broker unavailable" {
		t.Errorf("error header = %s", headers["error"])
	}
	if headers["attempts"] != "4" {
		t.Errorf("attempts header = %s", headers["attempts"])
	}
	// Original headers carry through prefixed, without clobbering ours
	if headers["original_event_type"] != "registration.promoted" {
		t.Errorf("original_event_type header = %s", headers["original_event_type"])
	}
}

func TestDLQ_PublishNilMessage(t *testing.T) {
	p := NewKafkaDLQPublisher(&capturingPublisher{}, nil)

	err := p.PublishToDLQ(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "nil") {
		t.Errorf("got %v, want nil-message error", err)
	}
}

func TestDLQ_PublishPropagatesProducerError(t *testing.T) {
	produceErr := errors.New("dlq topic unavailable")
	p := NewKafkaDLQPublisher(&capturingPublisher{err: produceErr}, nil)

	payload, key := lifecycleEnvelope(t)
	err := p.PublishToDLQ(context.Background(), &DLQMessage{
		ID:            "env-1",
		OriginalTopic: "campushub-lifecycle",
		OriginalKey:   key,
		Payload:       payload,
	})
	if !errors.Is(err, produceErr) {
		t.Errorf("got %v, want producer error", err)
	}
}

func TestDLQ_MessageJSONRoundTrip(t *testing.T) {
	payload, key := lifecycleEnvelope(t)
	msg := &DLQMessage{
		ID:            "env-9",
		OriginalTopic: "campushub-lifecycle",
		OriginalKey:   key,
		Payload:       payload,
		Error:         "max retries exceeded",
		Attempts:      6,
		MovedToDLQAt:  time.Now(),
		Source:        "campushub",
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got DLQMessage
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != msg.ID || got.OriginalKey != msg.OriginalKey || got.Attempts != 6 {
		t.Errorf("round trip = %+v", got)
	}
	var envelope map[string]interface{}
	if err := json.Unmarshal(got.Payload, &envelope); err != nil {
		t.Fatalf("nested payload: %v", err)
	}
	if envelope["campus_event_id"] != "event-42" {
		t.Errorf("campus_event_id = %v", envelope["campus_event_id"])
	}
}
