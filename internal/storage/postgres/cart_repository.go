package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// CartRepository хранит корзины в PostgreSQL.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт репозиторий корзин поверх Store.
func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{db: store.DB()}
}

// GetByID возвращает корзину с позициями или ErrCartNotFound.
func (r *CartRepository) GetByID(ctx context.Context, id string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, updated_at FROM carts WHERE id = $1`, id).
		Scan(&cart.ID, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("select cart %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price_minor, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY product_id
	`, id)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("select cart %s items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPriceMinor, &item.UpdatedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}
	return cart, nil
}

// UpsertItem добавляет позицию или заменяет количество существующей, создавая
// корзину при первом обращении.
func (r *CartRepository) UpsertItem(ctx context.Context, cartID string, item domain.CartItem) (domain.Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO carts (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
	`, cartID); err != nil {
		return domain.Cart{}, fmt.Errorf("upsert cart %s: %w", cartID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_minor)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              unit_price_minor = EXCLUDED.unit_price_minor,
		              updated_at = NOW()
	`, cartID, item.ProductID, item.Quantity, item.UnitPriceMinor); err != nil {
		return domain.Cart{}, fmt.Errorf("upsert cart item (cart %s, product %d): %w", cartID, item.ProductID, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Cart{}, fmt.Errorf("commit cart upsert: %w", err)
	}
	return r.GetByID(ctx, cartID)
}

// RemoveItem убирает позицию из корзины.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item (cart %s, product %d): %w", cartID, productID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}
