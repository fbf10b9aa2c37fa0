package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

// ProductService — вызывающий слой каталога.
type ProductService struct {
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	engine   *validation.Engine
	logger   *log.Entry
}

// NewProductService создаёт сервис каталога.
func NewProductService(products domain.ProductRepository, outbox domain.OutboxRepository, engine *validation.Engine, logger *log.Entry) *ProductService {
	if logger == nil {
		logger = log.WithField("component", "product-service")
	}
	return &ProductService{products: products, outbox: outbox, engine: engine, logger: logger}
}

// Create валидирует и создаёт товар.
func (s *ProductService) Create(ctx context.Context, in validation.CreateProductInput) (domain.Outcome[domain.Product], error) {
	outcome, err := s.engine.ValidateCreateProduct(ctx, in)
	if err != nil {
		return domain.Outcome[domain.Product]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Product](outcome), nil
	}

	product := domain.Product{
		Name:          in.Name,
		SKU:           in.SKU,
		Slug:          in.Slug,
		PriceMinor:    in.PriceMinor,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
	}
	created, err := s.products.Create(ctx, product)
	if errors.Is(err, domain.ErrProductConflict) {
		// Гонка с параллельным созданием того же SKU/slug после валидации.
		return domain.Failure[domain.Product](
			"sku or slug is already taken",
			domain.CodeValidationError,
			domain.FieldError{Field: "sku", Message: "sku or slug is already taken", Code: validation.CodeProductSKUInvalid},
		), nil
	}
	if err != nil {
		return domain.Outcome[domain.Product]{}, fmt.Errorf("create product: %w", err)
	}

	s.enqueueEvent(ctx, created, kafka.EventTypeProductCreated)
	s.logger.WithFields(log.Fields{"product_id": created.ID, "sku": created.SKU}).Info("product created")
	return domain.Success(created), nil
}

// Update валидирует и обновляет товар.
func (s *ProductService) Update(ctx context.Context, in validation.UpdateProductInput) (domain.Outcome[domain.Product], error) {
	outcome, err := s.engine.ValidateUpdateProduct(ctx, in)
	if err != nil {
		return domain.Outcome[domain.Product]{}, err
	}
	if outcome.IsFailure() {
		return failureAs[domain.Product](outcome), nil
	}

	current, err := s.products.GetByID(ctx, in.ID)
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.NotFound[domain.Product]("product"), nil
	}
	if err != nil {
		return domain.Outcome[domain.Product]{}, fmt.Errorf("load product %d: %w", in.ID, err)
	}

	current.Name = in.Name
	current.SKU = in.SKU
	current.Slug = in.Slug
	current.PriceMinor = in.PriceMinor
	current.StockQuantity = in.StockQuantity
	current.IsActive = in.IsActive
	if err := s.products.Update(ctx, current); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.NotFound[domain.Product]("product"), nil
		}
		return domain.Outcome[domain.Product]{}, fmt.Errorf("update product %d: %w", in.ID, err)
	}

	s.enqueueEvent(ctx, current, kafka.EventTypeProductUpdated)
	return domain.Success(current), nil
}

// enqueueEvent кладёт событие каталога в outbox; сбой публикации мутацию не отменяет.
func (s *ProductService) enqueueEvent(ctx context.Context, product domain.Product, eventType kafka.EventType) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(kafka.NewProductEvent(eventType, product.ID, product.SKU, product.IsActive))
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to marshal product event")
		return
	}
	_, err = s.outbox.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: "product",
		AggregateID:   fmt.Sprintf("%d", product.ID),
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to enqueue product event")
	}
}

// Get возвращает товар по идентификатору.
func (s *ProductService) Get(ctx context.Context, id int64) (domain.Outcome[domain.Product], error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.NotFound[domain.Product]("product"), nil
	}
	if err != nil {
		return domain.Outcome[domain.Product]{}, fmt.Errorf("load product %d: %w", id, err)
	}
	return domain.Success(product), nil
}
