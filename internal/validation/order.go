package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// Коды, используемые только правилами заказа.
const (
	CodeInvalidCustomerID = "INVALID_CUSTOMER_ID"
)

// paymentMethods — допустимые способы оплаты (сравнение регистронезависимое).
var paymentMethods = []string{
	"Credit Card", "Debit Card", "PayPal", "Bank Transfer", "Cash on Delivery", "Stripe",
}

// OrderItemInput — позиция в запросе на создание заказа.
type OrderItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderInput — данные запроса на создание заказа.
type CreateOrderInput struct {
	CustomerID      int64            `json:"customerId"`
	PaymentMethod   string           `json:"paymentMethod"`
	ShippingAddress string           `json:"shippingAddress"`
	Items           []OrderItemInput `json:"items"`
}

// OrderRules собирает набор правил создания заказа и прогоняет его через
// общий интерпретатор.
type OrderRules struct {
	products  domain.ProductReader
	customers domain.CustomerReader
	logger    *log.Entry
}

// NewOrderRules создаёт правила заказа над read-model товаров и покупателей.
func NewOrderRules(products domain.ProductReader, customers domain.CustomerReader, logger *log.Entry) *OrderRules {
	if logger == nil {
		logger = log.WithField("component", "order-rules")
	}
	return &OrderRules{products: products, customers: customers, logger: logger}
}

// ValidateCreate проверяет запрос на создание заказа. Независимые правила
// не обрывают друг друга; проверка остатка позиции пропускается, если
// её товар или количество уже провалились.
func (r *OrderRules) ValidateCreate(ctx context.Context, in CreateOrderInput) (domain.Outcome[domain.Unit], error) {
	return Evaluate(ctx, r.createRules(in))
}

func (r *OrderRules) createRules(in CreateOrderInput) []Rule {
	rules := []Rule{
		r.customerRule(in.CustomerID),
		Sync("paymentMethod", CodeInvalidPaymentMethod, "invalid payment method", func() bool {
			return isValidPaymentMethod(in.PaymentMethod)
		}),
		Sync("shippingAddress", CodeShippingAddress, "shipping address is required and cannot exceed 255 characters", func() bool {
			trimmed := strings.TrimSpace(in.ShippingAddress)
			return trimmed != "" && len(trimmed) <= 255
		}),
		Sync("items", CodeOrderItemsInvalid,
			fmt.Sprintf("order must contain between 1 and %d items", domain.MaxOrderItems),
			func() bool {
				return len(in.Items) > 0 && len(in.Items) <= domain.MaxOrderItems
			}),
	}

	for i, item := range in.Items {
		rules = append(rules, r.itemRules(i, item)...)
	}
	return rules
}

// customerRule отсекает неположительный идентификатор без похода в
// хранилище, затем проверяет существование покупателя.
func (r *OrderRules) customerRule(customerID int64) Rule {
	return Rule{
		Field: "customerId",
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			if customerID <= 0 {
				return &domain.FieldError{
					Field:   "customerId",
					Message: "valid customer id is required",
					Code:    CodeInvalidCustomerID,
				}, nil
			}
			exists, err := r.customers.Exists(ctx, customerID)
			if err != nil {
				return nil, fmt.Errorf("check customer %d: %w", customerID, err)
			}
			if !exists {
				return &domain.FieldError{
					Field:   "customerId",
					Message: "customer does not exist",
					Code:    CodeCustomerNotFound,
				}, nil
			}
			return nil, nil
		},
	}
}

func (r *OrderRules) itemRules(index int, item OrderItemInput) []Rule {
	productField := fmt.Sprintf("items[%d].productId", index)
	quantityField := fmt.Sprintf("items[%d].quantity", index)

	productRule := Rule{
		Field: productField,
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			if item.ProductID <= 0 {
				return &domain.FieldError{
					Field:   productField,
					Message: "valid product id is required",
					Code:    CodeInvalidProductID,
				}, nil
			}
			exists, err := r.products.Exists(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("check product %d: %w", item.ProductID, err)
			}
			if !exists {
				return &domain.FieldError{
					Field:   productField,
					Message: "product does not exist",
					Code:    CodeProductNotFound,
				}, nil
			}
			return nil, nil
		},
	}

	quantityRule := Sync(quantityField, CodeInvalidQuantity, "quantity must be greater than 0", func() bool {
		return item.Quantity > 0
	})
	quantityCapRule := Rule{
		Field:    fmt.Sprintf("items[%d].quantityCap", index),
		Requires: []string{quantityField},
		Check: func(context.Context) (*domain.FieldError, error) {
			if item.Quantity <= domain.MaxOrderItemQuantity {
				return nil, nil
			}
			return &domain.FieldError{
				Field:   quantityField,
				Message: fmt.Sprintf("quantity cannot exceed %d per item", domain.MaxOrderItemQuantity),
				Code:    CodeItemQuantityLimitExceeded,
			}, nil
		},
	}

	// Проверка остатка зависима: без существующего товара и положительного
	// количества сверять нечего.
	stockRule := Rule{
		Field:    fmt.Sprintf("items[%d].stock", index),
		Requires: []string{productField, quantityField},
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			product, err := r.products.GetByID(ctx, item.ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				// Товар исчез между проверкой существования и чтением снимка.
				return &domain.FieldError{
					Field:   productField,
					Message: "product does not exist",
					Code:    CodeProductNotFound,
				}, nil
			}
			if err != nil {
				return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
			}
			if !product.IsActive {
				return &domain.FieldError{
					Field:   productField,
					Message: "product is not available for purchase",
					Code:    CodeProductNotActive,
				}, nil
			}
			if product.StockQuantity < item.Quantity {
				return &domain.FieldError{
					Field:   quantityField,
					Message: fmt.Sprintf("only %d items available in stock", product.StockQuantity),
					Code:    CodeInsufficientStock,
				}, nil
			}
			return nil, nil
		},
	}

	return []Rule{productRule, quantityRule, quantityCapRule, stockRule}
}

func isValidPaymentMethod(method string) bool {
	for _, allowed := range paymentMethods {
		if strings.EqualFold(strings.TrimSpace(method), allowed) {
			return true
		}
	}
	return false
}
