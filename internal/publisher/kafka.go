package publisher

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher emits checkout lifecycle events for downstream
// consumers (order dashboards, notifications). Publishing is
// best-effort: a broker hiccup never blocks the checkout flow.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, orderID int64, orderNumber string, total float64) {
	p.publish(ctx, "order_created", orderID, map[string]interface{}{
		"order_id":     orderID,
		"order_number": orderNumber,
		"total_amount": total,
		"created_at":   time.Now(),
	})
}

func (p *KafkaPublisher) OrderPaid(ctx context.Context, orderID int64, orderNumber string) {
	p.publish(ctx, "order_paid", orderID, map[string]interface{}{
		"order_id":     orderID,
		"order_number": orderNumber,
		"paid_at":      time.Now(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, orderID int64, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s event for order %d: %v", eventType, orderID, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)), // order id for ordering
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("failed to publish %s event for order %d: %v", eventType, orderID, err)
	}
}

func (p *KafkaPublisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
