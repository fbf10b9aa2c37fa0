package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// CustomerRepository — read-model покупателей в PostgreSQL.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт репозиторий покупателей поверх Store.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{db: store.DB()}
}

// Exists проверяет наличие покупателя по идентификатору.
func (r *CustomerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer %d: %w", id, err)
	}
	return exists, nil
}
