package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.Cart),
	}
}

// GetByID возвращает корзину или ErrCartNotFound.
func (r *cartRepositoryInMemory) GetByID(_ context.Context, id string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[id]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	cart.Items = append([]domain.CartItem(nil), cart.Items...)
	return cart, nil
}

// UpsertItem добавляет позицию или заменяет количество существующей.
// Отсутствующая корзина создаётся первой операцией.
func (r *cartRepositoryInMemory) UpsertItem(_ context.Context, cartID string, item domain.CartItem) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	cart, ok := r.items[cartID]
	if !ok {
		cart = domain.Cart{ID: cartID}
	}

	item.UpdatedAt = now
	replaced := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			cart.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		cart.Items = append(cart.Items, item)
	}

	cart.UpdatedAt = now
	r.items[cartID] = cart

	cart.Items = append([]domain.CartItem(nil), cart.Items...)
	return cart, nil
}

// RemoveItem удаляет позицию из корзины.
func (r *cartRepositoryInMemory) RemoveItem(_ context.Context, cartID string, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.items[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}

	filtered := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	cart.Items = filtered
	cart.UpdatedAt = time.Now().UTC()
	r.items[cartID] = cart
	return nil
}
