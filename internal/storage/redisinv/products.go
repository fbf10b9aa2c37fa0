package redisinv

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// MirroredProducts оборачивает репозиторий товаров и ведёт зеркало остатков
// вслед за мутациями. Решение о списании всегда остаётся за основным
// хранилищем; зеркало лишь отсекает заведомо несостоятельные списания и
// кормит быстрые проверки.
type MirroredProducts struct {
	domain.ProductRepository
	mirror *Mirror
	logger *log.Entry
}

// NewMirroredProducts создаёт декоратор товаров с зеркалом остатков.
func NewMirroredProducts(inner domain.ProductRepository, mirror *Mirror, logger *log.Entry) *MirroredProducts {
	if logger == nil {
		logger = log.WithField("component", "mirrored-products")
	}
	return &MirroredProducts{ProductRepository: inner, mirror: mirror, logger: logger}
}

// Create сохраняет товар и загружает его остаток в зеркало.
func (p *MirroredProducts) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := p.ProductRepository.Create(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	if err := p.mirror.SetStock(ctx, created.ID, created.StockQuantity); err != nil {
		p.logger.WithError(err).WithField("product_id", created.ID).Warn("failed to mirror stock")
	}
	return created, nil
}

// Update перезаписывает товар и его остаток в зеркале.
func (p *MirroredProducts) Update(ctx context.Context, product domain.Product) error {
	if err := p.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	if err := p.mirror.SetStock(ctx, product.ID, product.StockQuantity); err != nil {
		p.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to mirror stock")
	}
	return nil
}

// DecrementStock сначала спрашивает зеркало: отказ зеркала экономит поход в
// основное хранилище. Подтверждённое зеркалом списание всё равно проводится
// через основное хранилище; при его отказе зеркало компенсируется.
func (p *MirroredProducts) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	mirrored, err := p.mirror.DecrementStock(ctx, productID, quantity)
	switch {
	case errors.Is(err, ErrNotMirrored):
		// Товар ещё не загружен в зеркало, решает основное хранилище.
		return p.decrementAndMirror(ctx, productID, quantity)
	case err != nil:
		p.logger.WithError(err).WithField("product_id", productID).Warn("stock mirror unavailable")
		return p.ProductRepository.DecrementStock(ctx, productID, quantity)
	case !mirrored:
		return false, nil
	}

	ok, err := p.ProductRepository.DecrementStock(ctx, productID, quantity)
	if err != nil || !ok {
		if restoreErr := p.mirror.IncrementStock(ctx, productID, quantity); restoreErr != nil {
			p.logger.WithError(restoreErr).WithField("product_id", productID).Warn("failed to restore mirrored stock")
		}
	}
	return ok, err
}

// IncrementStock возвращает остаток в основное хранилище и зеркало.
func (p *MirroredProducts) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	if err := p.ProductRepository.IncrementStock(ctx, productID, quantity); err != nil {
		return err
	}
	if err := p.mirror.IncrementStock(ctx, productID, quantity); err != nil {
		p.logger.WithError(err).WithField("product_id", productID).Warn("failed to restore mirrored stock")
	}
	return nil
}

// decrementAndMirror проводит списание через основное хранилище и загружает
// актуальный остаток в зеркало.
func (p *MirroredProducts) decrementAndMirror(ctx context.Context, productID int64, quantity int) (bool, error) {
	ok, err := p.ProductRepository.DecrementStock(ctx, productID, quantity)
	if err != nil || !ok {
		return ok, err
	}
	product, err := p.ProductRepository.GetByID(ctx, productID)
	if err != nil {
		p.logger.WithError(err).WithField("product_id", productID).Warn("failed to reload product for mirror")
		return true, nil
	}
	if err := p.mirror.SetStock(ctx, productID, product.StockQuantity); err != nil {
		p.logger.WithError(err).WithField("product_id", productID).Warn("failed to mirror stock")
	}
	return true, nil
}
