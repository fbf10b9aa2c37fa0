package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

const pgUniqueViolation = "23505"

// ProductRepository хранит товары в PostgreSQL.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт репозиторий товаров поверх Store.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{db: store.DB()}
}

// Create сохраняет товар и возвращает снимок с присвоенным идентификатором.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, sku, slug, price_minor, is_active, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, product.Name, product.SKU, product.Slug, product.PriceMinor, product.IsActive, product.StockQuantity).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Product{}, domain.ErrProductConflict
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

// Update перезаписывает товар целиком.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, sku = $3, slug = $4, price_minor = $5, is_active = $6,
		    stock_quantity = $7, updated_at = NOW()
		WHERE id = $1
	`, product.ID, product.Name, product.SKU, product.Slug, product.PriceMinor, product.IsActive, product.StockQuantity)
	if isUniqueViolation(err) {
		return domain.ErrProductConflict
	}
	if err != nil {
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %d rows affected: %w", product.ID, err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// GetByID возвращает снимок товара или ErrProductNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, sku, slug, price_minor, is_active, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.SKU, &product.Slug,
		&product.PriceMinor, &product.IsActive, &product.StockQuantity,
		&product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("select product %d: %w", id, err)
	}
	return product, nil
}

// Exists проверяет наличие товара по идентификатору.
func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product %d: %w", id, err)
	}
	return exists, nil
}

// ExistsBySKU проверяет занятость SKU, исключая товар excludeID.
func (r *ProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE LOWER(sku) = LOWER($1) AND id <> $2)
	`, sku, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sku %q: %w", sku, err)
	}
	return exists, nil
}

// ExistsBySlug проверяет занятость slug, исключая товар excludeID.
func (r *ProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE LOWER(slug) = LOWER($1) AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// DecrementStock условно списывает остаток одним UPDATE. Ноль затронутых
// строк означает нехватку остатка либо отсутствие товара.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrement stock rows affected: %w", err)
	}
	return affected > 0, nil
}

// IncrementStock возвращает остаток после неудачного оформления.
func (r *ProductRepository) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("increment stock for product %d: %w", productID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment stock rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
