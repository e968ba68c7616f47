package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicRegistrations         = "notifications_register"
	TopicAdministratorRequests = "administrator_requests"
)

// Notification is the payload consumed by the notification service.
type Notification struct {
	Email   string `json:"email"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// Gateway publishes notifications. Delivery is at-most-once from the
// caller's perspective; failures are the caller's to log and drop.
type Gateway interface {
	Publish(ctx context.Context, topic string, n Notification) error
}

type KafkaGateway struct {
	writer *kafka.Writer
}

func NewKafkaGateway(brokers []string) *KafkaGateway {
	return &KafkaGateway{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (g *KafkaGateway) Publish(ctx context.Context, topic string, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(n.Email),
		Value: data,
	}
	if err := g.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify: write to %s: %w", topic, err)
	}
	return nil
}

func (g *KafkaGateway) Close() error {
	return g.writer.Close()
}
