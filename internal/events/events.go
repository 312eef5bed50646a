// Package events carries domain notifications out of the service layer.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicIBStatus    = "ib.status"
	TopicWithdrawals = "ib.withdrawals"
	TopicCommission  = "ib.commission"
	TopicGroups      = "ib.trading_groups"
)

type Event struct {
	Topic       string      `json:"topic"`
	Type        string      `json:"type"`
	IBRequestID string      `json:"ib_request_id,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

func New(topic, eventType, ibRequestID string, payload interface{}) Event {
	return Event{
		Topic:       topic,
		Type:        eventType,
		IBRequestID: ibRequestID,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: e.Topic,
		Key:   []byte(e.IBRequestID),
		Value: value,
		Time:  e.Timestamp,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
