package domain

import "time"

// Ограничения на поля товара.
const (
	MaxProductNameLength = 100
	MaxProductPriceMinor = 100_000_000 // 1 000 000.00 в минимальных единицах
	MaxProductStock      = 100_000
)

// Product — снимок состояния товара на момент проверки. Валидация читает
// снимок и никогда его не мутирует; актуальность гарантируется только
// в пределах одного вызова.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Slug          string    `json:"slug"`
	PriceMinor    int64     `json:"priceMinor"`
	IsActive      bool      `json:"isActive"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
