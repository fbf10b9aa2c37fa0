package validation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/metrics"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/memory"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

func newEngine(t *testing.T) (*validation.Engine, domain.ProductRepository, domain.CartRepository) {
	t.Helper()
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	engine := validation.NewEngine(validation.Readers{
		Products:  products,
		Customers: memory.NewCustomerDirectory(1),
		Carts:     carts,
	}, metrics.NewValidationMetrics(), nil)
	return engine, products, carts
}

func TestEngine_ValidateCreateOrder(t *testing.T) {
	engine, products, _ := newEngine(t)
	ctx := context.Background()

	product, err := products.Create(ctx, domain.Product{
		Name: "Oak Shelf", SKU: "OAK-1", Slug: "oak-shelf",
		PriceMinor: 1500, IsActive: true, StockQuantity: 10,
	})
	require.NoError(t, err)

	outcome, err := engine.ValidateCreateOrder(ctx, validation.CreateOrderInput{
		CustomerID:      1,
		PaymentMethod:   "Credit Card",
		ShippingAddress: "Невский проспект, 28",
		Items:           []validation.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())

	outcome, err = engine.ValidateCreateOrder(ctx, validation.CreateOrderInput{
		CustomerID:      99,
		PaymentMethod:   "barter",
		ShippingAddress: "",
		Items:           []validation.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, outcome.IsFailure())
	require.Equal(t, domain.CodeValidationError, outcome.Code())
	require.Len(t, outcome.Details(), 3)
}

func TestEngine_ValidateAddCartItemTreatsMissingCartAsEmpty(t *testing.T) {
	engine, products, _ := newEngine(t)
	ctx := context.Background()

	product, err := products.Create(ctx, domain.Product{
		Name: "Oak Shelf", SKU: "OAK-1", Slug: "oak-shelf",
		PriceMinor: 1500, IsActive: true, StockQuantity: 3,
	})
	require.NoError(t, err)

	outcome, err := engine.ValidateAddCartItem(ctx, "brand-new-cart", product.ID, 3)
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())
}

func TestEngine_ValidateUpdateCartItemSeesCartState(t *testing.T) {
	engine, products, carts := newEngine(t)
	ctx := context.Background()

	product, err := products.Create(ctx, domain.Product{
		Name: "Oak Shelf", SKU: "OAK-1", Slug: "oak-shelf",
		PriceMinor: 1500, IsActive: true, StockQuantity: 5,
	})
	require.NoError(t, err)
	_, err = carts.UpsertItem(ctx, "cart-1", domain.CartItem{ProductID: product.ID, Quantity: 2, UnitPriceMinor: 1500})
	require.NoError(t, err)

	outcome, err := engine.ValidateUpdateCartItem(ctx, "cart-1", product.ID, 5)
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())

	outcome, err = engine.ValidateUpdateCartItem(ctx, "cart-1", product.ID+1, 1)
	require.NoError(t, err)
	require.True(t, outcome.IsFailure())
}

func TestEngine_ValidateStatusTransitionCanonicalizes(t *testing.T) {
	engine, _, _ := newEngine(t)

	outcome, err := engine.ValidateStatusTransition(context.Background(), domain.Order{
		ID:     1,
		Status: domain.OrderStatusPending,
	}, "processing")
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())
	require.Equal(t, domain.OrderStatusProcessing, outcome.Value())
}

func TestEngine_CheckStock(t *testing.T) {
	engine, products, _ := newEngine(t)
	ctx := context.Background()

	product, err := products.Create(ctx, domain.Product{
		Name: "Oak Shelf", SKU: "OAK-1", Slug: "oak-shelf",
		PriceMinor: 1500, IsActive: true, StockQuantity: 2,
	})
	require.NoError(t, err)

	outcome, err := engine.CheckStock(ctx, product.ID, 2)
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())

	outcome, err = engine.CheckStock(ctx, product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, validation.CodeInsufficientStock, outcome.Code())
}
