package domain

import (
	"strings"
	"time"
)

// Ограничения на состав заказа.
const (
	// MaxOrderItems — предел числа позиций в одном заказе.
	MaxOrderItems = 100
	// MaxOrderItemQuantity — предел количества в одной позиции заказа.
	MaxOrderItemQuantity = 1000
)

// OrderStatus описывает жизненный цикл заказа в каноническом написании.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, обработка ещё не началась.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusProcessing — заказ принят в обработку.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "Cancelled"
	// OrderStatusReturned — покупатель вернул заказ.
	OrderStatusReturned OrderStatus = "Returned"
	// OrderStatusRefunded — средства возвращены; терминальный статус.
	OrderStatusRefunded OrderStatus = "Refunded"
)

// OrderStatuses перечисляет все допустимые статусы.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusRefunded,
}

// statusTransitions — направленные рёбра допустимых переходов.
// Отсутствие ребра означает запрет перехода.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusReturned},
	OrderStatusDelivered:  {OrderStatusReturned, OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusReturned:   {OrderStatusRefunded},
	OrderStatusRefunded:   {},
}

// ParseOrderStatus нормализует имя статуса к каноническому написанию.
// Сравнение регистронезависимое, ведущие и завершающие пробелы игнорируются.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, status := range OrderStatuses {
		if strings.EqualFold(trimmed, string(status)) {
			return status, true
		}
	}
	return "", false
}

// CanTransitionTo проверяет переход по таблице. Переход в тот же статус
// всегда допустим как no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, есть ли у статуса исходящие переходы.
func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// OrderItem — позиция заказа. Количество фиксируется при оформлении,
// цена за единицу снимается с товара в момент покупки.
type OrderItem struct {
	ProductID      int64 `json:"productId"`
	Quantity       int   `json:"quantity"`
	UnitPriceMinor int64 `json:"unitPriceMinor"`
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID          int64       `json:"id"`
	CustomerID  int64       `json:"customerId"`
	Status      OrderStatus `json:"status"`
	AmountMinor int64       `json:"amountMinor"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
