package order

import (
	"context"
	"time"

	"github.com/arvera/comanda-service/internal/model"
)

// Event types published to the orders topic for downstream collaborators
// (ticket printing, notifications, dashboards).
const (
	EventOrderCreated   = "OrderCreated"
	EventStatusChanged  = "OrderStatusChanged"
	EventOrderCancelled = "OrderCancelled"
	EventOrderDelivered = "OrderDelivered"
)

type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   *model.Order `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

// EventPublisher is satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
