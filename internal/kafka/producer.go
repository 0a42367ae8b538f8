package kafkax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic carries dashboard lifecycle events (snapshot refreshes, export
// requests) between the server and the worker.
const Topic = "dashboard-events"

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, msg)
}

// PublishEvent marshals and publishes an envelope keyed by its type.
func (p *Producer) PublishEvent(ctx context.Context, e Envelope) error {
	if e.RequestedAt.IsZero() {
		e.RequestedAt = time.Now()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Publish(ctx, []byte(e.Type), b)
}

func (p *Producer) Close() error { return p.writer.Close() }
