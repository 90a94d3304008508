package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"ms-station/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// OrderCreatedEvent is the payload streamed when an order is placed.
type OrderCreatedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   int64     `json:"order_id"`
	UserID    string    `json:"user_id"`
	Tickets   int       `json:"tickets"`
	CreatedAt time.Time `json:"created_at"`
}

// TripChangedEvent is the payload streamed when a trip is created,
// updated or deleted.
type TripChangedEvent struct {
	EventID string `json:"event_id"`
	TripID  int64  `json:"trip_id"`
	Action  string `json:"action"`
}

// PublishOrderCreated streams the order creation event to Kafka.
func (p *Producer) PublishOrderCreated(topic string, order models.Order) error {
	event := OrderCreatedEvent{
		EventID:   uuid.New().String(),
		OrderID:   order.ID,
		UserID:    order.UserID,
		Tickets:   len(order.Tickets),
		CreatedAt: order.CreatedAt,
	}
	return p.publish(topic, strconv.FormatInt(order.ID, 10), event)
}

// PublishTripChanged streams a trip lifecycle event to Kafka.
func (p *Producer) PublishTripChanged(topic string, tripID int64, action string) error {
	event := TripChangedEvent{
		EventID: uuid.New().String(),
		TripID:  tripID,
		Action:  action,
	}
	return p.publish(topic, strconv.FormatInt(tripID, 10), event)
}

func (p *Producer) publish(topic, key string, event interface{}) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
