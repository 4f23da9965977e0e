package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gemreg/internal/platform/kafka"
	"gemreg/pkg/platform/sentinel"
)

// KafkaStore publishes audit events to the audit topic. Kafka is the system
// of record for audit in multi-node deployments; reads happen through
// downstream consumers, so List is unsupported here.
type KafkaStore struct {
	producer *kafka.Producer
}

// NewKafkaStore constructs a Kafka-backed audit sink.
func NewKafkaStore(producer *kafka.Producer) *KafkaStore {
	return &KafkaStore{producer: producer}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	// Key by actor so one caller's events stay ordered within a partition.
	if err := s.producer.Produce(ctx, []byte(event.Actor), payload); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (s *KafkaStore) List(_ context.Context) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit sink is write-only: %w", sentinel.ErrInvalidState)
}
