package validation

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// StockChecker сверяет запрошенное количество с текущим снимком товара.
// Это быстрый пользовательский pre-flight: окончательную гарантию даёт
// условное списание в хранилище, а не эта проверка.
type StockChecker struct {
	products domain.ProductReader
	logger   *log.Entry
}

// NewStockChecker создаёт проверку доступности над read-model товаров.
func NewStockChecker(products domain.ProductReader, logger *log.Entry) *StockChecker {
	if logger == nil {
		logger = log.WithField("component", "stock-checker")
	}
	return &StockChecker{products: products, logger: logger}
}

// StockRequest — пара товар/количество для батч-проверки.
type StockRequest struct {
	ProductID int64
	Quantity  int
}

// StockCheckResult — итог проверки одной пары.
type StockCheckResult struct {
	ProductID int64
	Result    domain.Outcome[domain.Unit]
}

// Check валидирует доступность одного товара. Предусловия отсекаются до
// похода в хранилище; ошибка чтения поднимается наверх как сбой.
func (c *StockChecker) Check(ctx context.Context, productID int64, quantity int) (domain.Outcome[domain.Unit], error) {
	if productID <= 0 {
		return domain.Failure[domain.Unit](
			"valid product id is required",
			CodeInvalidProductID,
			domain.FieldError{Field: "productId", Message: "product id must be greater than 0", Code: CodeInvalidProductID},
		), nil
	}
	if quantity <= 0 {
		return domain.Failure[domain.Unit](
			"quantity must be greater than 0",
			CodeInvalidQuantity,
			domain.FieldError{Field: "quantity", Message: "quantity must be greater than 0", Code: CodeInvalidQuantity},
		), nil
	}

	product, err := c.products.GetByID(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.Failure[domain.Unit](
			fmt.Sprintf("product %d does not exist", productID),
			domain.CodeNotFound,
			domain.FieldError{Field: "productId", Message: "product does not exist", Code: CodeProductNotFound},
		), nil
	}
	if err != nil {
		return domain.Outcome[domain.Unit]{}, fmt.Errorf("load product %d: %w", productID, err)
	}

	if !product.IsActive {
		return domain.Failure[domain.Unit](
			fmt.Sprintf("product %q is not available for purchase", product.Name),
			CodeProductNotActive,
			domain.FieldError{Field: "productId", Message: "product is not available for purchase", Code: CodeProductNotActive},
		), nil
	}
	if product.StockQuantity < quantity {
		message := fmt.Sprintf("only %d items available in stock", product.StockQuantity)
		c.logger.WithFields(log.Fields{
			"product_id": productID,
			"requested":  quantity,
			"available":  product.StockQuantity,
		}).Debug("stock check rejected")
		return domain.Failure[domain.Unit](
			message,
			CodeInsufficientStock,
			domain.FieldError{Field: "quantity", Message: message, Code: CodeInsufficientStock},
		), nil
	}

	return domain.OK(), nil
}

// CheckBatch валидирует список пар и возвращает итог по каждой: частичный
// успех выразим, решение «одна плохая строка губит весь батч» остаётся
// за вызывающим.
func (c *StockChecker) CheckBatch(ctx context.Context, items []StockRequest) ([]StockCheckResult, error) {
	results := make([]StockCheckResult, 0, len(items))
	for _, item := range items {
		outcome, err := c.Check(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		results = append(results, StockCheckResult{ProductID: item.ProductID, Result: outcome})
	}
	return results, nil
}
