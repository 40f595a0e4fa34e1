package kafka

import "time"

// EventType определяет тип события.
type EventType string

const (
	// EventTypeOrderCreated публикуется после сохранения заказа и списания остатков.
	EventTypeOrderCreated EventType = "order.created"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "orders.order.events"
	TopicDeadLetterQueue = "orders.dlq" // Dead Letter Queue для failed messages
)

// OrderEventItem — позиция заказа внутри события.
type OrderEventItem struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventType   EventType        `json:"event_type"`
	OrderID     string           `json:"order_id"`
	CustomerID  string           `json:"customer_id"`
	AmountMinor int64            `json:"amount_minor"`
	Items       []OrderEventItem `json:"items,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewOrderCreatedEvent создаёт событие order.created.
func NewOrderCreatedEvent(orderID, customerID string, amountMinor int64, items []OrderEventItem) *OrderEvent {
	return &OrderEvent{
		EventType:   EventTypeOrderCreated,
		OrderID:     orderID,
		CustomerID:  customerID,
		AmountMinor: amountMinor,
		Items:       items,
		Timestamp:   time.Now(),
	}
}
