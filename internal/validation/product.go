package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

const (
	maxSKULength  = 50
	maxSlugLength = 100
)

var (
	skuPattern  = regexp.MustCompile(`^[A-Z0-9\-_]+$`)
	slugPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)
)

// CreateProductInput — данные запроса на создание товара.
type CreateProductInput struct {
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Slug          string `json:"slug"`
	PriceMinor    int64  `json:"priceMinor"`
	StockQuantity int    `json:"stockQuantity"`
	IsActive      bool   `json:"isActive"`
}

// UpdateProductInput — данные запроса на изменение товара.
type UpdateProductInput struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Slug          string `json:"slug"`
	PriceMinor    int64  `json:"priceMinor"`
	StockQuantity int    `json:"stockQuantity"`
	IsActive      bool   `json:"isActive"`
}

// ProductRules проверяет форму и уникальность полей товара.
type ProductRules struct {
	products domain.ProductReader
	logger   *log.Entry
}

// NewProductRules создаёт правила товара над read-model.
func NewProductRules(products domain.ProductReader, logger *log.Entry) *ProductRules {
	if logger == nil {
		logger = log.WithField("component", "product-rules")
	}
	return &ProductRules{products: products, logger: logger}
}

// ValidateCreate проверяет создание товара.
func (r *ProductRules) ValidateCreate(ctx context.Context, in CreateProductInput) (domain.Outcome[domain.Unit], error) {
	return Evaluate(ctx, r.fieldRules(in.Name, in.SKU, in.Slug, in.PriceMinor, in.StockQuantity, 0))
}

// ValidateUpdate проверяет изменение товара: сверх правил создания требуется
// существование самого товара, а уникальность SKU/slug не учитывает его
// текущие значения.
func (r *ProductRules) ValidateUpdate(ctx context.Context, in UpdateProductInput) (domain.Outcome[domain.Unit], error) {
	rules := []Rule{{
		Field: "id",
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			if in.ID <= 0 {
				return &domain.FieldError{Field: "id", Message: "valid product id is required", Code: CodeProductIDInvalid}, nil
			}
			exists, err := r.products.Exists(ctx, in.ID)
			if err != nil {
				return nil, fmt.Errorf("check product %d: %w", in.ID, err)
			}
			if !exists {
				return &domain.FieldError{Field: "id", Message: "product does not exist", Code: CodeProductIDInvalid}, nil
			}
			return nil, nil
		},
	}}
	rules = append(rules, r.fieldRules(in.Name, in.SKU, in.Slug, in.PriceMinor, in.StockQuantity, in.ID)...)
	return Evaluate(ctx, rules)
}

// fieldRules — общие правила полей товара; excludeID исключает сам товар
// из проверок уникальности при обновлении.
func (r *ProductRules) fieldRules(name, sku, slug string, priceMinor int64, stockQuantity int, excludeID int64) []Rule {
	return []Rule{
		Sync("name", CodeProductNameInvalid,
			fmt.Sprintf("product name must be between 1 and %d characters", domain.MaxProductNameLength),
			func() bool {
				trimmed := strings.TrimSpace(name)
				return trimmed != "" && len(trimmed) <= domain.MaxProductNameLength
			}),
		r.skuRule(sku, excludeID),
		r.slugRule(slug, excludeID),
		Sync("priceMinor", CodeProductPriceInvalid,
			fmt.Sprintf("price must be greater than 0 and cannot exceed %d", domain.MaxProductPriceMinor),
			func() bool {
				return priceMinor > 0 && priceMinor <= domain.MaxProductPriceMinor
			}),
		Sync("stockQuantity", CodeProductStockInvalid,
			fmt.Sprintf("stock quantity must be between 0 and %d", domain.MaxProductStock),
			func() bool {
				return stockQuantity >= 0 && stockQuantity <= domain.MaxProductStock
			}),
	}
}

func (r *ProductRules) skuRule(sku string, excludeID int64) Rule {
	return Rule{
		Field: "sku",
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			if sku == "" || len(sku) > maxSKULength || !skuPattern.MatchString(sku) {
				return &domain.FieldError{
					Field:   "sku",
					Message: "sku can only contain uppercase letters, numbers, hyphens and underscores",
					Code:    CodeProductSKUInvalid,
				}, nil
			}
			taken, err := r.products.ExistsBySKU(ctx, sku, excludeID)
			if err != nil {
				return nil, fmt.Errorf("check sku %q: %w", sku, err)
			}
			if taken {
				return &domain.FieldError{Field: "sku", Message: "sku already exists", Code: CodeProductSKUInvalid}, nil
			}
			return nil, nil
		},
	}
}

func (r *ProductRules) slugRule(slug string, excludeID int64) Rule {
	return Rule{
		Field: "slug",
		Check: func(ctx context.Context) (*domain.FieldError, error) {
			if slug == "" || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
				return &domain.FieldError{
					Field:   "slug",
					Message: "slug can only contain lowercase letters, numbers and hyphens",
					Code:    CodeProductSlugInvalid,
				}, nil
			}
			taken, err := r.products.ExistsBySlug(ctx, slug, excludeID)
			if err != nil {
				return nil, fmt.Errorf("check slug %q: %w", slug, err)
			}
			if taken {
				return &domain.FieldError{Field: "slug", Message: "slug already exists", Code: CodeProductSlugInvalid}, nil
			}
			return nil, nil
		},
	}
}
