package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		nextID: 1,
		items:  make(map[int64]domain.Product),
	}
}

// Create сохраняет новый товар, присваивая ему идентификатор.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.SKU, product.SKU) || strings.EqualFold(existing.Slug, product.Slug) {
			return domain.Product{}, domain.ErrProductConflict
		}
	}

	product.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.items[product.ID] = product
	return product, nil
}

// Update заменяет состояние существующего товара.
func (r *productRepositoryInMemory) Update(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = product
	return nil
}

// GetByID возвращает снимок товара или ErrProductNotFound.
func (r *productRepositoryInMemory) GetByID(_ context.Context, id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Exists проверяет наличие товара.
func (r *productRepositoryInMemory) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

// ExistsBySKU проверяет занятость SKU, исключая товар excludeID.
func (r *productRepositoryInMemory) ExistsBySKU(_ context.Context, sku string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if product.ID != excludeID && strings.EqualFold(product.SKU, sku) {
			return true, nil
		}
	}
	return false, nil
}

// ExistsBySlug проверяет занятость slug, исключая товар excludeID.
func (r *productRepositoryInMemory) ExistsBySlug(_ context.Context, slug string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if product.ID != excludeID && strings.EqualFold(product.Slug, slug) {
			return true, nil
		}
	}
	return false, nil
}

// DecrementStock условно списывает остаток под одной блокировкой:
// проверка и списание не разделимы, поэтому перепродажа невозможна.
func (r *productRepositoryInMemory) DecrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if product.StockQuantity < quantity {
		return false, nil
	}
	product.StockQuantity -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.items[productID] = product
	return true, nil
}

// IncrementStock возвращает остаток (компенсация).
func (r *productRepositoryInMemory) IncrementStock(_ context.Context, productID int64, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.StockQuantity += quantity
	product.UpdatedAt = time.Now().UTC()
	r.items[productID] = product
	return nil
}
