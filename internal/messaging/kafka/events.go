package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCanceled      EventType = "order.canceled"

	// Catalog события
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductUpdated EventType = "product.updated"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "storeguard.order.events"
	TopicCatalogEvents = "storeguard.catalog.events"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, customerID int64, status string) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now(),
	}
}

// ProductEvent представляет событие каталога
type ProductEvent struct {
	EventType EventType `json:"event_type"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	IsActive  bool      `json:"is_active"`
	Timestamp time.Time `json:"timestamp"`
}

// NewProductEvent создает новое событие каталога
func NewProductEvent(eventType EventType, productID int64, sku string, isActive bool) *ProductEvent {
	return &ProductEvent{
		EventType: eventType,
		ProductID: productID,
		SKU:       sku,
		IsActive:  isActive,
		Timestamp: time.Now(),
	}
}

// TopicForEvent сопоставляет тип события топику публикации.
func TopicForEvent(eventType EventType) string {
	switch eventType {
	case EventTypeProductCreated, EventTypeProductUpdated:
		return TopicCatalogEvents
	default:
		return TopicOrderEvents
	}
}
