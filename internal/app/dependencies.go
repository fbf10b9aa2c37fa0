package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/health"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/memory"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/postgres"
)

// Dependencies содержит репозитории приложения поверх выбранного хранилища.
type Dependencies struct {
	Products  domain.ProductRepository
	Customers domain.CustomerReader
	Orders    domain.OrderRepository
	Carts     domain.CartRepository
	Outbox    domain.OutboxRepository
	Timeline  domain.TimelineRepository
	Logger    *log.Entry

	pg *postgres.Store
}

// NewDependencies собирает зависимости: PostgreSQL при заданном DSN,
// иначе in-memory хранилище для разработки и тестов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres dsn is not set, using in-memory storage")
		return &Dependencies{
			Products: memory.NewProductRepository(),
			// Каталог покупателей пуст до явного наполнения; для демо-режима
			// регистрируется один покупатель.
			Customers: memory.NewCustomerDirectory(1),
			Orders:    memory.NewOrderRepository(),
			Carts:     memory.NewCartRepository(),
			Outbox:    memory.NewOutboxRepository(),
			Timeline:  memory.NewTimelineRepository(),
			Logger:    logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("postgres storage initialized")

	return &Dependencies{
		Products:  postgres.NewProductRepository(store),
		Customers: postgres.NewCustomerRepository(store),
		Orders:    postgres.NewOrderRepository(store),
		Carts:     postgres.NewCartRepository(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Timeline:  postgres.NewTimelineRepository(store),
		Logger:    logger,
		pg:        store,
	}, nil
}

// RegisterHealthChecks навешивает проверки хранилища на health handler.
func (d *Dependencies) RegisterHealthChecks(handler *health.Handler) {
	if d.pg != nil {
		handler.Register("postgres", d.pg.Ping)
	}
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.pg != nil {
		return d.pg.Close()
	}
	return nil
}
