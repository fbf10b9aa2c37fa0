package store_test

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/service/store"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

func (f *fixture) cartService() *store.CartService {
	return store.NewCartService(f.carts, f.products, f.engine, nil)
}

func TestCartService_AddItemMergesQuantities(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.cartService()
	ctx := context.Background()

	outcome, err := svc.AddItem(ctx, "cart-1", product.ID, 2)
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("add failed: %v / %s", err, outcome.Message())
	}

	outcome, err = svc.AddItem(ctx, "cart-1", product.ID, 3)
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("add failed: %v / %s", err, outcome.Message())
	}

	item, ok := outcome.Value().Item(product.ID)
	if !ok || item.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", item)
	}
	if item.UnitPriceMinor != 1500 {
		t.Fatalf("expected unit price 1500, got %d", item.UnitPriceMinor)
	}
}

func TestCartService_AddItemRejectsWhenMergedTotalExceedsStock(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 5)
	svc := f.cartService()
	ctx := context.Background()

	if outcome, err := svc.AddItem(ctx, "cart-1", product.ID, 4); err != nil || !outcome.IsSuccess() {
		t.Fatalf("add failed: %v / %s", err, outcome.Message())
	}

	outcome, err := svc.AddItem(ctx, "cart-1", product.ID, 3)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure when combined quantity exceeds stock")
	}
	if !hasDetail(outcome.Details(), validation.CodeTotalQuantityExceedsStock) {
		t.Fatalf("expected TOTAL_QUANTITY_EXCEEDS_STOCK, got %+v", outcome.Details())
	}
}

func TestCartService_UpdateItemSetsAbsoluteQuantity(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 5)
	svc := f.cartService()
	ctx := context.Background()

	if outcome, err := svc.AddItem(ctx, "cart-1", product.ID, 4); err != nil || !outcome.IsSuccess() {
		t.Fatalf("add failed: %v / %s", err, outcome.Message())
	}

	// 4 -> 5 как приращение не прошло бы по остатку, как абсолют проходит.
	outcome, err := svc.UpdateItem(ctx, "cart-1", product.ID, 5)
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("update failed: %v / %s", err, outcome.Message())
	}
	item, ok := outcome.Value().Item(product.ID)
	if !ok || item.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %+v", item)
	}

	outcome, err = svc.UpdateItem(ctx, "cart-1", product.ID, 6)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure above available stock")
	}
}

func TestCartService_UpdateItemNotInCart(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 5)
	svc := f.cartService()

	outcome, err := svc.UpdateItem(context.Background(), "cart-1", product.ID, 2)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !outcome.IsFailure() || !hasDetail(outcome.Details(), validation.CodeCartItemNotFound) {
		t.Fatalf("expected CART_ITEM_NOT_FOUND, got %+v", outcome.Details())
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 5)
	svc := f.cartService()
	ctx := context.Background()

	if outcome, err := svc.AddItem(ctx, "cart-1", product.ID, 2); err != nil || !outcome.IsSuccess() {
		t.Fatalf("add failed: %v / %s", err, outcome.Message())
	}

	outcome, err := svc.RemoveItem(ctx, "cart-1", product.ID)
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("remove failed: %v / %s", err, outcome.Message())
	}
	if len(outcome.Value().Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", outcome.Value().Items)
	}

	outcome, err = svc.RemoveItem(ctx, "cart-1", product.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !outcome.IsFailure() || !hasDetail(outcome.Details(), validation.CodeCartItemNotFound) {
		t.Fatalf("expected CART_ITEM_NOT_FOUND, got %+v", outcome.Details())
	}
}

func TestCartService_RemoveItemUnknownCart(t *testing.T) {
	f := newFixture()
	svc := f.cartService()

	outcome, err := svc.RemoveItem(context.Background(), "missing", 1)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !outcome.IsFailure() || outcome.Code() != domain.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", outcome.Code())
	}
}

func TestCartService_GetUnknownCartIsEmpty(t *testing.T) {
	f := newFixture()
	svc := f.cartService()

	outcome, err := svc.Get(context.Background(), "fresh-cart")
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("get failed: %v / %s", err, outcome.Message())
	}
	cart := outcome.Value()
	if cart.ID != "fresh-cart" || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func hasDetail(details []domain.FieldError, code string) bool {
	for _, detail := range details {
		if detail.Code == code {
			return true
		}
	}
	return false
}
