package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

// Типы событий timeline заказа.
const (
	timelineEventOrderCreated       = "OrderCreated"
	timelineEventOrderStatusChanged = "OrderStatusChanged"
)

// OrderService — вызывающий слой заказов: валидирует запрос и после Success
// выполняет мутацию. Перед записью остаток списывается условно — это и есть
// итоговая гарантия против перепродажи, pre-flight проверка её не заменяет.
type OrderService struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
	engine   *validation.Engine
	logger   *log.Entry
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	engine *validation.Engine,
	logger *log.Entry,
) *OrderService {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &OrderService{
		orders:   orders,
		products: products,
		timeline: timeline,
		outbox:   outbox,
		engine:   engine,
		logger:   logger,
	}
}

// Create валидирует и оформляет заказ. Цена позиции снимается с товара в
// момент покупки; списание остатка условное, несостоявшиеся списания
// компенсируются.
func (s *OrderService) Create(ctx context.Context, in validation.CreateOrderInput) (domain.Outcome[domain.Order], error) {
	outcome, err := s.engine.ValidateCreateOrder(ctx, in)
	if err != nil {
		return domain.Outcome[domain.Order]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Order](outcome), nil
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	var amountMinor int64
	for _, item := range in.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return domain.Outcome[domain.Order]{}, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		items = append(items, domain.OrderItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceMinor: product.PriceMinor,
		})
		amountMinor += product.PriceMinor * int64(item.Quantity)
	}

	// Повторная сверка внутри условного списания: между валидацией и записью
	// остаток мог уйти другому запросу.
	decremented := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.restoreStock(ctx, decremented)
			return domain.Outcome[domain.Order]{}, fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
		}
		if !ok {
			s.restoreStock(ctx, decremented)
			return domain.Failure[domain.Order](
				fmt.Sprintf("stock for product %d changed while placing the order", item.ProductID),
				validation.CodeInsufficientStock,
			), nil
		}
		decremented = append(decremented, item)
	}

	order := domain.Order{
		CustomerID:  in.CustomerID,
		Status:      domain.OrderStatusPending,
		AmountMinor: amountMinor,
		Items:       items,
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.restoreStock(ctx, decremented)
		return domain.Outcome[domain.Order]{}, fmt.Errorf("create order: %w", err)
	}

	s.recordTimeline(ctx, created.ID, timelineEventOrderCreated, "")
	s.enqueueEvent(ctx, created, kafka.EventTypeOrderCreated)

	s.logger.WithFields(log.Fields{
		"order_id":    created.ID,
		"customer_id": created.CustomerID,
		"items":       len(created.Items),
	}).Info("order created")
	return domain.Success(created), nil
}

// UpdateStatus валидирует переход статуса и применяет его. Переход в текущий
// статус принимается как no-op без записи.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, requested string) (domain.Outcome[domain.Order], error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.NotFound[domain.Order]("order"), nil
	}
	if err != nil {
		return domain.Outcome[domain.Order]{}, fmt.Errorf("load order %d: %w", orderID, err)
	}

	outcome, err := s.engine.ValidateStatusTransition(ctx, order, requested)
	if err != nil {
		return domain.Outcome[domain.Order]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Order](outcome), nil
	}

	next := outcome.Value()
	if next == order.Status {
		return domain.Success(order), nil
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return domain.Outcome[domain.Order]{}, fmt.Errorf("update order %d status: %w", orderID, err)
	}

	previous := order.Status
	order.Status = next
	s.recordTimeline(ctx, orderID, timelineEventOrderStatusChanged, fmt.Sprintf("%s -> %s", previous, next))

	eventType := kafka.EventTypeOrderStatusChanged
	if next == domain.OrderStatusCancelled {
		eventType = kafka.EventTypeOrderCanceled
	}
	s.enqueueEvent(ctx, order, eventType)

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       next,
	}).Info("order status changed")
	return domain.Success(order), nil
}

// Timeline возвращает историю статусов заказа.
func (s *OrderService) Timeline(ctx context.Context, orderID int64) (domain.Outcome[[]domain.TimelineEvent], error) {
	if _, err := s.orders.GetByID(ctx, orderID); errors.Is(err, domain.ErrOrderNotFound) {
		return domain.NotFound[[]domain.TimelineEvent]("order"), nil
	} else if err != nil {
		return domain.Outcome[[]domain.TimelineEvent]{}, fmt.Errorf("load order %d: %w", orderID, err)
	}
	events, err := s.timeline.List(ctx, orderID)
	if err != nil {
		return domain.Outcome[[]domain.TimelineEvent]{}, fmt.Errorf("list timeline for order %d: %w", orderID, err)
	}
	return domain.Success(events), nil
}

// Get возвращает заказ по идентификатору.
func (s *OrderService) Get(ctx context.Context, orderID int64) (domain.Outcome[domain.Order], error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.NotFound[domain.Order]("order"), nil
	}
	if err != nil {
		return domain.Outcome[domain.Order]{}, fmt.Errorf("load order %d: %w", orderID, err)
	}
	return domain.Success(order), nil
}

// restoreStock компенсирует уже выполненные списания после неудачного оформления.
func (s *OrderService) restoreStock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).Warn("failed to restore stock")
		}
	}
}

// recordTimeline пишет событие истории; сбой audit-записи заказ не отменяет.
func (s *OrderService) recordTimeline(ctx context.Context, orderID int64, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := s.timeline.Append(ctx, event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
	}
}

// enqueueEvent кладёт событие жизненного цикла в outbox для публикации.
func (s *OrderService) enqueueEvent(ctx context.Context, order domain.Order, eventType kafka.EventType) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status)))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order event")
		return
	}
	_, err = s.outbox.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   fmt.Sprintf("%d", order.ID),
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order event")
	}
}

// failureAs переносит отказ в Outcome другого типа значения.
func failureAs[T, S any](outcome domain.Outcome[S]) domain.Outcome[T] {
	return domain.Failure[T](outcome.Message(), outcome.Code(), outcome.Details()...)
}
