package validation

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// CartRules проверяет инварианты корзины поверх StockChecker: предел
// различных товаров, предел количества одного товара и доступность
// остатка с учётом уже лежащего в корзине количества.
type CartRules struct {
	products domain.ProductReader
	stock    *StockChecker
	logger   *log.Entry
}

// NewCartRules создаёт правила корзины.
func NewCartRules(products domain.ProductReader, stock *StockChecker, logger *log.Entry) *CartRules {
	if logger == nil {
		logger = log.WithField("component", "cart-rules")
	}
	return &CartRules{products: products, stock: stock, logger: logger}
}

// ValidateAddItem проверяет добавление товара в корзину. Базовая проверка
// склада и проверки контекста корзины независимы: если споткнулись и
// суммарное количество, и предел на товар, в отказе видны оба нарушения.
// Зависимые от существования товара проверки пропускаются, когда товар
// не найден.
func (r *CartRules) ValidateAddItem(ctx context.Context, cart domain.Cart, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	base, err := r.stock.Check(ctx, productID, quantity)
	if err != nil {
		return domain.Outcome[domain.Unit]{}, err
	}

	var details []domain.FieldError
	details = append(details, base.Details()...)

	productKnown := base.Code() != CodeInvalidProductID && base.Code() != domain.CodeNotFound
	quantityPositive := base.Code() != CodeInvalidQuantity

	requestCapHit := quantityPositive && quantity > domain.MaxQuantityPerProduct
	if requestCapHit {
		details = append(details, domain.FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("maximum %d items of the same product allowed in cart", domain.MaxQuantityPerProduct),
			Code:    CodeItemQuantityLimitExceeded,
		})
	}

	if productKnown {
		cartDetails, err := r.checkCartContext(ctx, cart, productID, quantity, quantityPositive, requestCapHit)
		if err != nil {
			return domain.Outcome[domain.Unit]{}, err
		}
		details = append(details, cartDetails...)
	}

	if len(details) > 0 {
		return domain.ValidationFailure[domain.Unit](details), nil
	}
	return domain.OK(), nil
}

// checkCartContext проверяет инварианты, зависящие от текущего содержимого корзины.
func (r *CartRules) checkCartContext(ctx context.Context, cart domain.Cart, productID int64, quantity int, quantityPositive, requestCapHit bool) ([]domain.FieldError, error) {
	existing, inCart := cart.Item(productID)
	if !inCart {
		if len(cart.Items) >= domain.MaxDistinctCartProducts {
			return []domain.FieldError{{
				Field:   "productId",
				Message: fmt.Sprintf("maximum %d different products allowed in cart", domain.MaxDistinctCartProducts),
				Code:    CodeCartItemLimitExceeded,
			}}, nil
		}
		return nil, nil
	}

	if !quantityPositive {
		return nil, nil
	}

	combined := existing.Quantity + quantity
	var details []domain.FieldError

	product, err := r.products.GetByID(ctx, productID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		// Товар исчез между проверками; отказ уже зафиксирован базовой проверкой.
	case err != nil:
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	case combined > product.StockQuantity:
		details = append(details, domain.FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("total quantity (%d) would exceed available stock (%d)", combined, product.StockQuantity),
			Code:    CodeTotalQuantityExceedsStock,
		})
	}

	// Предел на товар уже зафиксирован по запрошенному количеству;
	// второй отказ с тем же кодом по сумме не добавляет информации.
	if !requestCapHit && combined > domain.MaxQuantityPerProduct {
		details = append(details, domain.FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("maximum %d items of the same product allowed in cart", domain.MaxQuantityPerProduct),
			Code:    CodeItemQuantityLimitExceeded,
		})
	}

	return details, nil
}

// ValidateUpdateItem проверяет изменение количества существующей позиции.
// Проверки склада и предела на товар идут от нового абсолютного количества,
// а не от дельты.
func (r *CartRules) ValidateUpdateItem(ctx context.Context, cart domain.Cart, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	var details []domain.FieldError
	quantityPositive := true

	if quantity <= 0 {
		quantityPositive = false
		details = append(details, domain.FieldError{
			Field:   "quantity",
			Message: "quantity must be greater than 0",
			Code:    CodeInvalidQuantity,
		})
	} else if quantity > domain.MaxQuantityPerProduct {
		details = append(details, domain.FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("maximum %d items allowed per product", domain.MaxQuantityPerProduct),
			Code:    CodeItemQuantityLimitExceeded,
		})
	}

	if _, inCart := cart.Item(productID); !inCart {
		details = append(details, domain.FieldError{
			Field:   "productId",
			Message: "cart item not found",
			Code:    CodeCartItemNotFound,
		})
		return domain.ValidationFailure[domain.Unit](details), nil
	}

	product, err := r.products.GetByID(ctx, productID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		details = append(details, domain.FieldError{
			Field:   "productId",
			Message: "product no longer exists",
			Code:    CodeProductNotFound,
		})
	case err != nil:
		return domain.Outcome[domain.Unit]{}, fmt.Errorf("load product %d: %w", productID, err)
	default:
		if !product.IsActive {
			details = append(details, domain.FieldError{
				Field:   "productId",
				Message: "product is no longer available",
				Code:    CodeProductNotActive,
			})
		}
		if quantityPositive && quantity > product.StockQuantity {
			details = append(details, domain.FieldError{
				Field:   "quantity",
				Message: fmt.Sprintf("only %d items available in stock", product.StockQuantity),
				Code:    CodeInsufficientStock,
			})
		}
	}

	if len(details) > 0 {
		return domain.ValidationFailure[domain.Unit](details), nil
	}
	return domain.OK(), nil
}
