package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductConflict сигнализирует о конфликте уникальности SKU/slug при сохранении.
	ErrProductConflict = errors.New("product sku or slug already exists")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderConflict возвращается при попытке создать заказ с занятым ID.
	ErrOrderConflict = errors.New("order already exists")
	// ErrCartNotFound возвращается, если корзина не найдена в хранилище.
	ErrCartNotFound = errors.New("cart not found")
	// ErrInsufficientStock — условное списание не прошло: остатка меньше, чем требуется.
	ErrInsufficientStock = errors.New("insufficient stock")
)
