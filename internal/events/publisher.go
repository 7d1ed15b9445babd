// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/omnex-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EventTypeOrderSubmitted = "OrderSubmitted"

// OrderSubmitted is emitted once the order endpoint has accepted an order.
type OrderSubmitted struct {
	EventID        string       `json:"event_id"`
	OrderID        string       `json:"order_id"`
	TransactionID  string       `json:"transaction_id"`
	DeliveryRegion string       `json:"delivery_region"`
	ItemCount      int          `json:"item_count"`
	Total          float64      `json:"total"`
	SubmittedAt    time.Time    `json:"submitted_at"`
	Order          domain.Order `json:"order"`
}

func NewOrderSubmitted(o domain.Order, at time.Time) OrderSubmitted {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderSubmitted{
		EventID:        uuid.NewString(),
		OrderID:        o.OrderID,
		TransactionID:  o.Payment.TransactionID,
		DeliveryRegion: o.DeliveryRegion,
		ItemCount:      count,
		Total:          o.Total,
		SubmittedAt:    at.UTC(),
		Order:          o,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderSubmitted) error
	Close() error
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderSubmitted) error { return nil }

func (NopPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderSubmitted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order id keeps an order's events on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderSubmitted)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventTypeOrderSubmitted, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
