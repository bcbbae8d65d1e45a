package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kutuku/marketplace/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

// OrderCreatedEvent is published after an order has been persisted. Carrier
// holds the trace context so consumers can continue the span.
type OrderCreatedEvent struct {
	Carrier     propagation.MapCarrier `json:"carrier,omitempty"`
	OrderID     uuid.UUID              `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	UserID      uuid.UUID              `json:"user_id"`
	TotalPrice  int64                  `json:"total_price"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
