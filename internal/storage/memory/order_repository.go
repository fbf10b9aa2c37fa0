package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		nextID: 1,
		items:  make(map[int64]domain.Order),
	}
}

// Create сохраняет новый заказ, присваивая ему идентификатор.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID != 0 {
		if _, exists := r.items[order.ID]; exists {
			return domain.Order{}, domain.ErrOrderConflict
		}
	} else {
		order.ID = r.nextID
		r.nextID++
	}

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	r.items[order.ID] = order
	return order, nil
}

// GetByID возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) GetByID(_ context.Context, id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order, nil
}

// UpdateStatus переводит заказ в новый статус.
func (r *orderRepositoryInMemory) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.items[id] = order
	return nil
}
