package validation

// Машинные коды нарушений отдельных правил. Коды стабильные: по ним
// клиенты и HTTP-граница различают причины отказа.
const (
	CodeInvalidProductID  = "INVALID_PRODUCT_ID"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeProductNotActive  = "PRODUCT_NOT_AVAILABLE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"

	CodeInvalidOrderStatus       = "INVALID_ORDER_STATUS"
	CodeInvalidStatusTransition  = "INVALID_STATUS_TRANSITION"
	CodeCannotCancelShippedOrder = "CANNOT_CANCEL_SHIPPED_ORDER"
	CodeInsufficientStockToShip  = "INSUFFICIENT_STOCK_FOR_SHIPPING"

	CodeCartItemLimitExceeded     = "CART_ITEM_LIMIT_EXCEEDED"
	CodeItemQuantityLimitExceeded = "ITEM_QUANTITY_LIMIT_EXCEEDED"
	CodeTotalQuantityExceedsStock = "TOTAL_QUANTITY_EXCEEDS_STOCK"
	CodeCartItemNotFound          = "CART_ITEM_NOT_FOUND"

	CodeCustomerNotFound     = "CUSTOMER_NOT_FOUND"
	CodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	CodeShippingAddress      = "SHIPPING_ADDRESS_INVALID"
	CodeOrderItemsInvalid    = "ORDER_ITEMS_INVALID"

	CodeProductIDInvalid    = "PRODUCT_ID_INVALID"
	CodeProductNameInvalid  = "PRODUCT_NAME_INVALID"
	CodeProductSKUInvalid   = "PRODUCT_SKU_INVALID"
	CodeProductSlugInvalid  = "PRODUCT_SLUG_INVALID"
	CodeProductPriceInvalid = "PRODUCT_PRICE_INVALID"
	CodeProductStockInvalid = "PRODUCT_STOCK_INVALID"
)
