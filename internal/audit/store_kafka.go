package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"credgate/internal/platform/kafka/producer"
)

// KafkaStore appends audit events to a Kafka topic, keyed by subject so
// events for one identity stay ordered within a partition.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaStore(p *producer.Producer, topic string) *KafkaStore {
	if topic == "" {
		topic = "credgate.audit"
	}
	return &KafkaStore{producer: p, topic: topic}
}

type kafkaEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Subject      string    `json:"subject"`
	Role         string    `json:"role,omitempty"`
	Action       string    `json:"action"`
	CredentialID string    `json:"credential_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(kafkaEvent(event))
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	})
}
