package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/metrics"
)

// Имена use case для метрик и логов.
const (
	UseCaseCreateOrder    = "create_order"
	UseCaseUpdateStatus   = "update_order_status"
	UseCaseAddCartItem    = "add_cart_item"
	UseCaseUpdateCartItem = "update_cart_item"
	UseCaseCreateProduct  = "create_product"
	UseCaseUpdateProduct  = "update_product"
	UseCaseStockCheck     = "stock_check"
)

// Readers — читающие порты, которыми пользуется валидация.
type Readers struct {
	Products  domain.ProductReader
	Customers domain.CustomerReader
	Carts     domain.CartReader
}

// Engine — единая точка входа валидации: по одному методу на use case.
// Правила только читают снимки состояния; мутацию после успеха выполняет
// вызывающий слой. Никакого состояния между вызовами Engine не хранит.
type Engine struct {
	stock    *StockChecker
	status   *StatusValidator
	cart     *CartRules
	orders   *OrderRules
	products *ProductRules
	carts    domain.CartReader
	metrics  *metrics.ValidationMetrics
	logger   *log.Entry
}

// NewEngine собирает валидаторы над переданными read-model.
func NewEngine(readers Readers, m *metrics.ValidationMetrics, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.WithField("component", "validation-engine")
	}
	stock := NewStockChecker(readers.Products, logger)
	return &Engine{
		stock:    stock,
		status:   NewStatusValidator(readers.Products, logger),
		cart:     NewCartRules(readers.Products, stock, logger),
		orders:   NewOrderRules(readers.Products, readers.Customers, logger),
		products: NewProductRules(readers.Products, logger),
		carts:    readers.Carts,
		metrics:  m,
		logger:   logger,
	}
}

// ValidateCreateOrder проверяет запрос на создание заказа.
func (e *Engine) ValidateCreateOrder(ctx context.Context, in CreateOrderInput) (domain.Outcome[domain.Unit], error) {
	started := time.Now()
	outcome, err := e.orders.ValidateCreate(ctx, in)
	observe(e, UseCaseCreateOrder, outcome, err, started)
	return outcome, err
}

// ValidateStatusTransition проверяет переход статуса уже загруженного заказа
// и при успехе возвращает канонизированный статус.
func (e *Engine) ValidateStatusTransition(ctx context.Context, order domain.Order, requested string) (domain.Outcome[domain.OrderStatus], error) {
	started := time.Now()
	outcome, err := e.status.ValidateTransition(ctx, order, requested)
	observe(e, UseCaseUpdateStatus, outcome, err, started)
	return outcome, err
}

// ValidateAddCartItem проверяет добавление товара в корзину cartID.
// Отсутствующая корзина трактуется как пустая: первое добавление создаёт её.
func (e *Engine) ValidateAddCartItem(ctx context.Context, cartID string, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	started := time.Now()
	cart, err := e.loadCart(ctx, cartID)
	if err != nil {
		return domain.Outcome[domain.Unit]{}, err
	}
	outcome, err := e.cart.ValidateAddItem(ctx, cart, productID, quantity)
	observe(e, UseCaseAddCartItem, outcome, err, started)
	return outcome, err
}

// ValidateUpdateCartItem проверяет новое абсолютное количество существующей позиции.
func (e *Engine) ValidateUpdateCartItem(ctx context.Context, cartID string, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	started := time.Now()
	cart, err := e.loadCart(ctx, cartID)
	if err != nil {
		return domain.Outcome[domain.Unit]{}, err
	}
	outcome, err := e.cart.ValidateUpdateItem(ctx, cart, productID, quantity)
	observe(e, UseCaseUpdateCartItem, outcome, err, started)
	return outcome, err
}

// ValidateCreateProduct проверяет создание товара.
func (e *Engine) ValidateCreateProduct(ctx context.Context, in CreateProductInput) (domain.Outcome[domain.Unit], error) {
	started := time.Now()
	outcome, err := e.products.ValidateCreate(ctx, in)
	observe(e, UseCaseCreateProduct, outcome, err, started)
	return outcome, err
}

// ValidateUpdateProduct проверяет изменение товара.
func (e *Engine) ValidateUpdateProduct(ctx context.Context, in UpdateProductInput) (domain.Outcome[domain.Unit], error) {
	started := time.Now()
	outcome, err := e.products.ValidateUpdate(ctx, in)
	observe(e, UseCaseUpdateProduct, outcome, err, started)
	return outcome, err
}

// CheckStock проксирует одиночную проверку остатка.
func (e *Engine) CheckStock(ctx context.Context, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	outcome, err := e.stock.Check(ctx, productID, quantity)
	if err == nil && e.metrics != nil {
		e.metrics.ObserveStockCheck(outcome.IsSuccess())
	}
	return outcome, err
}

// CheckStockBatch проксирует батч-проверку остатков.
func (e *Engine) CheckStockBatch(ctx context.Context, items []StockRequest) ([]StockCheckResult, error) {
	results, err := e.stock.CheckBatch(ctx, items)
	if err == nil && e.metrics != nil {
		for _, res := range results {
			e.metrics.ObserveStockCheck(res.Result.IsSuccess())
		}
	}
	return results, err
}

func (e *Engine) loadCart(ctx context.Context, cartID string) (domain.Cart, error) {
	cart, err := e.carts.GetByID(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{ID: cartID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart %q: %w", cartID, err)
	}
	return cart, nil
}

// observe пишет метрики и debug-лог по итогу прогона. Инфраструктурный сбой
// метрик use case не касается: он уйдёт наверх как ошибка.
func observe[T any](e *Engine, useCase string, outcome domain.Outcome[T], err error, started time.Time) {
	if err != nil {
		return
	}
	codes := failureCodes(outcome)
	if e.metrics != nil {
		e.metrics.ObserveRun(useCase, outcome.IsSuccess(), codes, time.Since(started))
	}
	if outcome.IsFailure() {
		e.logger.WithFields(log.Fields{
			"use_case": useCase,
			"code":     outcome.Code(),
			"details":  len(outcome.Details()),
		}).Debug("validation rejected")
	}
}

func failureCodes[T any](outcome domain.Outcome[T]) []string {
	if outcome.IsSuccess() {
		return nil
	}
	details := outcome.Details()
	if len(details) == 0 {
		return []string{outcome.Code()}
	}
	codes := make([]string, 0, len(details))
	for _, detail := range details {
		codes = append(codes, detail.Code)
	}
	return codes
}
