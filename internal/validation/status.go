package validation

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// StatusValidator проверяет допустимость перехода статуса заказа.
type StatusValidator struct {
	products domain.ProductReader
	logger   *log.Entry
}

// NewStatusValidator создаёт валидатор переходов; read-model товаров нужен
// для повторной сверки остатков при отгрузке.
func NewStatusValidator(products domain.ProductReader, logger *log.Entry) *StatusValidator {
	if logger == nil {
		logger = log.WithField("component", "status-validator")
	}
	return &StatusValidator{products: products, logger: logger}
}

// ValidateTransition проверяет переход заказа в запрошенный статус и при
// успехе возвращает канонизированный статус. Порядок проверок фиксирован:
// разбор имени, no-op на тот же статус, запрет отмены отгруженного заказа
// (до таблицы — у отказа собственный код), таблица переходов и, для
// отгрузки, повторная сверка остатков по каждой позиции.
func (v *StatusValidator) ValidateTransition(ctx context.Context, order domain.Order, requested string) (domain.Outcome[domain.OrderStatus], error) {
	next, ok := domain.ParseOrderStatus(requested)
	if !ok {
		return domain.Failure[domain.OrderStatus](
			fmt.Sprintf("invalid order status: %q", requested),
			CodeInvalidOrderStatus,
			domain.FieldError{Field: "status", Message: "invalid order status", Code: CodeInvalidOrderStatus},
		), nil
	}

	if next == order.Status {
		// Переход в текущий статус всегда принимается как no-op.
		return domain.Success(next), nil
	}

	if next == domain.OrderStatusCancelled &&
		(order.Status == domain.OrderStatusShipped || order.Status == domain.OrderStatusDelivered) {
		return domain.Failure[domain.OrderStatus](
			"cannot cancel an order that has already been shipped or delivered",
			CodeCannotCancelShippedOrder,
			domain.FieldError{
				Field:   "status",
				Message: "cannot cancel an order that has already been shipped or delivered",
				Code:    CodeCannotCancelShippedOrder,
			},
		), nil
	}

	if !order.Status.CanTransitionTo(next) {
		message := fmt.Sprintf("cannot change order status from %q to %q", order.Status, next)
		return domain.Failure[domain.OrderStatus](
			message,
			CodeInvalidStatusTransition,
			domain.FieldError{Field: "status", Message: message, Code: CodeInvalidStatusTransition},
		), nil
	}

	if next == domain.OrderStatusShipped {
		if outcome, err := v.checkShippingStock(ctx, order); err != nil || outcome.IsFailure() {
			return outcome, err
		}
	}

	return domain.Success(next), nil
}

// checkShippingStock повторно сверяет остатки по каждой позиции заказа:
// склад мог разойтись с моментом оформления. Первая нехватка прерывает
// проверку и называет товар.
func (v *StatusValidator) checkShippingStock(ctx context.Context, order domain.Order) (domain.Outcome[domain.OrderStatus], error) {
	for _, item := range order.Items {
		product, err := v.products.GetByID(ctx, item.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			return v.shippingShortfall(order.ID, item.ProductID, fmt.Sprintf("product %d", item.ProductID)), nil
		}
		if err != nil {
			return domain.Outcome[domain.OrderStatus]{}, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		if product.StockQuantity < item.Quantity {
			return v.shippingShortfall(order.ID, item.ProductID, fmt.Sprintf("%q", product.Name)), nil
		}
	}
	return domain.Success(domain.OrderStatusShipped), nil
}

func (v *StatusValidator) shippingShortfall(orderID, productID int64, productName string) domain.Outcome[domain.OrderStatus] {
	message := fmt.Sprintf("insufficient stock for product %s to ship the order", productName)
	v.logger.WithFields(log.Fields{
		"order_id":   orderID,
		"product_id": productID,
	}).Debug("shipping blocked by stock shortfall")
	return domain.Failure[domain.OrderStatus](
		message,
		CodeInsufficientStockToShip,
		domain.FieldError{Field: "status", Message: message, Code: CodeInsufficientStockToShip},
	)
}
