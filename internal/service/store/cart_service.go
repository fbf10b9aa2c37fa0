package store

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

// CartService — вызывающий слой корзины. Добавление складывает количество с
// уже лежащим в корзине, обновление задаёт количество абсолютно.
type CartService struct {
	carts    domain.CartRepository
	products domain.ProductReader
	engine   *validation.Engine
	logger   *log.Entry
}

// NewCartService создаёт сервис корзины.
func NewCartService(carts domain.CartRepository, products domain.ProductReader, engine *validation.Engine, logger *log.Entry) *CartService {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &CartService{carts: carts, products: products, engine: engine, logger: logger}
}

// AddItem валидирует и добавляет товар в корзину. Для уже лежащего товара
// количество складывается с запрошенным.
func (s *CartService) AddItem(ctx context.Context, cartID string, productID int64, quantity int) (domain.Outcome[domain.Cart], error) {
	outcome, err := s.engine.ValidateAddCartItem(ctx, cartID, productID, quantity)
	if err != nil {
		return domain.Outcome[domain.Cart]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Cart](outcome), nil
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load product %d: %w", productID, err)
	}

	total := quantity
	if cart, err := s.carts.GetByID(ctx, cartID); err == nil {
		if existing, ok := cart.Item(productID); ok {
			total += existing.Quantity
		}
	} else if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	cart, err := s.carts.UpsertItem(ctx, cartID, domain.CartItem{
		ProductID:      productID,
		Quantity:       total,
		UnitPriceMinor: product.PriceMinor,
	})
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("upsert cart item: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   total,
	}).Debug("cart item added")
	return domain.Success(cart), nil
}

// UpdateItem валидирует и задаёт новое количество позиции. Количество
// трактуется абсолютно, не как приращение.
func (s *CartService) UpdateItem(ctx context.Context, cartID string, productID int64, quantity int) (domain.Outcome[domain.Cart], error) {
	outcome, err := s.engine.ValidateUpdateCartItem(ctx, cartID, productID, quantity)
	if err != nil {
		return domain.Outcome[domain.Cart]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Cart](outcome), nil
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load product %d: %w", productID, err)
	}

	cart, err := s.carts.UpsertItem(ctx, cartID, domain.CartItem{
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceMinor: product.PriceMinor,
	})
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return domain.Success(cart), nil
}

// RemoveItem убирает позицию из корзины.
func (s *CartService) RemoveItem(ctx context.Context, cartID string, productID int64) (domain.Outcome[domain.Cart], error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NotFound[domain.Cart]("cart"), nil
	}
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	if _, ok := cart.Item(productID); !ok {
		return domain.Failure[domain.Cart](
			"item is not in the cart",
			domain.CodeValidationError,
			domain.FieldError{Field: "productId", Message: "item is not in the cart", Code: validation.CodeCartItemNotFound},
		), nil
	}

	if err := s.carts.RemoveItem(ctx, cartID, productID); err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("remove cart item: %w", err)
	}
	cart, err = s.carts.GetByID(ctx, cartID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	if errors.Is(err, domain.ErrCartNotFound) {
		cart = domain.Cart{ID: cartID}
	}
	return domain.Success(cart), nil
}

// Get возвращает корзину; для неизвестного идентификатора — пустую корзину.
func (s *CartService) Get(ctx context.Context, cartID string) (domain.Outcome[domain.Cart], error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Success(domain.Cart{ID: cartID}), nil
	}
	if err != nil {
		return domain.Outcome[domain.Cart]{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	return domain.Success(cart), nil
}
