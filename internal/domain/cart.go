package domain

import "time"

// Инварианты корзины.
const (
	// MaxDistinctCartProducts — предел различных товаров в одной корзине.
	MaxDistinctCartProducts = 50
	// MaxQuantityPerProduct — предел количества одного товара в корзине.
	MaxQuantityPerProduct = 100
)

// CartItem — позиция корзины.
type CartItem struct {
	ProductID      int64     `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceMinor int64     `json:"unitPriceMinor"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Cart агрегирует позиции покупателя до оформления заказа.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Item возвращает позицию по товару, если она уже есть в корзине.
func (c Cart) Item(productID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
