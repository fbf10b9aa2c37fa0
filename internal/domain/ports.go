package domain

import (
	"context"
	"time"
)

// ProductReader — read-model товаров. Валидация ходит только по читающим путям.
type ProductReader interface {
	// GetByID возвращает снимок товара или ErrProductNotFound.
	GetByID(ctx context.Context, id int64) (Product, error)
	// Exists проверяет наличие товара по идентификатору.
	Exists(ctx context.Context, id int64) (bool, error)
	// ExistsBySKU проверяет занятость SKU, исключая товар excludeID (0 — без исключения).
	ExistsBySKU(ctx context.Context, sku string, excludeID int64) (bool, error)
	// ExistsBySlug проверяет занятость slug, исключая товар excludeID (0 — без исключения).
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// CustomerReader — read-model покупателей.
type CustomerReader interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// OrderReader — read-model заказов.
type OrderReader interface {
	// GetByID возвращает заказ с позициями или ErrOrderNotFound.
	GetByID(ctx context.Context, id int64) (Order, error)
}

// CartReader — read-model корзин.
type CartReader interface {
	// GetByID возвращает корзину или ErrCartNotFound.
	GetByID(ctx context.Context, id string) (Cart, error)
}

// ProductRepository расширяет read-model мутациями со стороны вызывающего слоя.
type ProductRepository interface {
	ProductReader
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	// DecrementStock условно списывает остаток: false без ошибки означает,
	// что остатка не хватило и списание не выполнено. Атомарность — забота
	// реализации хранилища, а не валидатора.
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
	// IncrementStock возвращает остаток (компенсация неудачного оформления).
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	OrderReader
	Create(ctx context.Context, order Order) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
}

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	CartReader
	// UpsertItem добавляет позицию или заменяет количество существующей.
	UpsertItem(ctx context.Context, cartID string, item CartItem) (Cart, error)
	RemoveItem(ctx context.Context, cartID string, productID int64) error
}

// OutboxMessage хранит данные события для последующей публикации.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// EventPublisher публикует события из transactional outbox; обязан быть идемпотентным.
type EventPublisher interface {
	Publish(ctx context.Context, msg OutboxMessage) error
}

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  int64     `json:"orderId"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurredAt"`
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID int64) ([]TimelineEvent, error)
}
