package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to one topic per category, keyed by subject so
// all events for an entity stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	topics map[string]string
}

// NewKafkaPublisher creates a publisher writing catalog events to
// catalogTopic and report events to reportTopic.
func NewKafkaPublisher(brokers []string, catalogTopic, reportTopic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, catalogTopic, reportTopic)
}

func newKafkaPublisher(w messageWriter, catalogTopic, reportTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topics: map[string]string{
			CategoryCatalog: catalogTopic,
			CategoryReport:  reportTopic,
		},
	}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	topic := p.topics[evt.Category()]
	if topic == "" {
		return fmt.Errorf("no kafka topic for event type %q", evt.Type)
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(fmt.Sprintf("%s:%d", evt.Kind, evt.SubjectID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "event_id", Value: []byte(evt.ID)},
		},
	})
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
