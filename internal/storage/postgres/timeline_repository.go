package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// TimelineRepository хранит историю статусов заказов в PostgreSQL.
type TimelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository создаёт репозиторий timeline поверх Store.
func NewTimelineRepository(store *Store) *TimelineRepository {
	return &TimelineRepository{db: store.DB()}
}

// Append записывает событие жизненного цикла заказа.
func (r *TimelineRepository) Append(ctx context.Context, event domain.TimelineEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_timeline (order_id, event_type, reason, occurred_at)
		VALUES ($1, $2, $3, $4)
	`, event.OrderID, event.Type, event.Reason, event.Occurred)
	if err != nil {
		return fmt.Errorf("insert timeline event for order %d: %w", event.OrderID, err)
	}
	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *TimelineRepository) List(ctx context.Context, orderID int64) ([]domain.TimelineEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, event_type, reason, occurred_at
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY occurred_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select timeline for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var events []domain.TimelineEvent
	for rows.Next() {
		var event domain.TimelineEvent
		if err := rows.Scan(&event.OrderID, &event.Type, &event.Reason, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline events: %w", err)
	}
	return events, nil
}
