package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	domorder "example.com/mystic-prints/app/internal/domain/order"
)

const (
	DefaultTopic        = "orders.placed"
	EventTypeOrderPlace = "order.placed"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes placed-order events to Kafka, keyed by user so one
// shopper's orders stay in partition order.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewPublisher(topic string, brokers ...string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &Publisher{writer: w, timeout: 5 * time.Second}
}

func (p *Publisher) OrderPlaced(ctx context.Context, ev domorder.PlacedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlace)},
			{Key: "external_id", Value: []byte(ev.ExternalID)},
		},
		Time: ev.PlacedAt,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
