package validation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/memory"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

func TestStatusValidator_Transitions(t *testing.T) {
	repo := memory.NewProductRepository()
	validator := validation.NewStatusValidator(repo, nil)

	cases := []struct {
		name      string
		from      domain.OrderStatus
		requested string
		wantCode  string
	}{
		{"pending to processing", domain.OrderStatusPending, "Processing", ""},
		{"pending to cancelled", domain.OrderStatusPending, "Cancelled", ""},
		{"processing to cancelled", domain.OrderStatusProcessing, "Cancelled", ""},
		{"delivered to refunded", domain.OrderStatusDelivered, "Refunded", ""},
		{"returned to refunded", domain.OrderStatusReturned, "Refunded", ""},
		{"pending skips to shipped", domain.OrderStatusPending, "Shipped", validation.CodeInvalidStatusTransition},
		{"cancelled is terminal", domain.OrderStatusCancelled, "Pending", validation.CodeInvalidStatusTransition},
		{"refunded is terminal", domain.OrderStatusRefunded, "Pending", validation.CodeInvalidStatusTransition},
		{"shipped cannot be cancelled", domain.OrderStatusShipped, "Cancelled", validation.CodeCannotCancelShippedOrder},
		{"delivered cannot be cancelled", domain.OrderStatusDelivered, "Cancelled", validation.CodeCannotCancelShippedOrder},
		{"unknown status name", domain.OrderStatusPending, "Teleported", validation.CodeInvalidOrderStatus},
		{"empty status name", domain.OrderStatusPending, "", validation.CodeInvalidOrderStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := domain.Order{ID: 1, Status: tc.from}
			outcome, err := validator.ValidateTransition(context.Background(), order, tc.requested)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantCode == "" {
				if !outcome.IsSuccess() {
					t.Fatalf("expected success, got %q (%s)", outcome.Code(), outcome.Message())
				}
				return
			}
			if outcome.Code() != tc.wantCode {
				t.Fatalf("expected code %q, got %q (%s)", tc.wantCode, outcome.Code(), outcome.Message())
			}
		})
	}
}

func TestStatusValidator_SameStatusIsNoOp(t *testing.T) {
	validator := validation.NewStatusValidator(memory.NewProductRepository(), nil)

	for _, status := range domain.OrderStatuses {
		order := domain.Order{ID: 1, Status: status}
		outcome, err := validator.ValidateTransition(context.Background(), order, string(status))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.IsSuccess() || outcome.Value() != status {
			t.Fatalf("%s -> %s must be a no-op success, got %q", status, status, outcome.Code())
		}
	}
}

func TestStatusValidator_CaseInsensitiveCanonicalResult(t *testing.T) {
	validator := validation.NewStatusValidator(memory.NewProductRepository(), nil)
	order := domain.Order{ID: 1, Status: domain.OrderStatusPending}

	outcome, err := validator.ValidateTransition(context.Background(), order, "pRoCeSsInG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.IsSuccess() || outcome.Value() != domain.OrderStatusProcessing {
		t.Fatalf("expected canonical Processing, got %q / %q", outcome.Value(), outcome.Code())
	}
}

func TestStatusValidator_ShippingRechecksStock(t *testing.T) {
	repo := memory.NewProductRepository()
	shelf, err := repo.Create(context.Background(), domain.Product{
		Name: "Shelf", SKU: "SHELF-1", Slug: "shelf", PriceMinor: 100, IsActive: true, StockQuantity: 10,
	})
	if err != nil {
		t.Fatalf("seed shelf: %v", err)
	}
	vase, err := repo.Create(context.Background(), domain.Product{
		Name: "Vase", SKU: "VASE-2", Slug: "vase-2", PriceMinor: 100, IsActive: true, StockQuantity: 1,
	})
	if err != nil {
		t.Fatalf("seed vase: %v", err)
	}
	validator := validation.NewStatusValidator(repo, nil)

	order := domain.Order{
		ID:     7,
		Status: domain.OrderStatusProcessing,
		Items: []domain.OrderItem{
			{ProductID: shelf.ID, Quantity: 2},
			{ProductID: vase.ID, Quantity: 3},
		},
	}

	outcome, err := validator.ValidateTransition(context.Background(), order, "Shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Code() != validation.CodeInsufficientStockToShip {
		t.Fatalf("expected INSUFFICIENT_STOCK_FOR_SHIPPING, got %q", outcome.Code())
	}
	// Первая нехватка прерывает проверку и называет товар.
	if !strings.Contains(outcome.Message(), "Vase") {
		t.Fatalf("expected shortfall product name in message, got %q", outcome.Message())
	}
}

func TestStatusValidator_ShippingPassesWithEnoughStock(t *testing.T) {
	repo := memory.NewProductRepository()
	product, err := repo.Create(context.Background(), domain.Product{
		Name: "Table", SKU: "TBL-1", Slug: "table", PriceMinor: 100, IsActive: true, StockQuantity: 4,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	validator := validation.NewStatusValidator(repo, nil)

	order := domain.Order{
		ID:     8,
		Status: domain.OrderStatusProcessing,
		Items:  []domain.OrderItem{{ProductID: product.ID, Quantity: 4}},
	}
	outcome, err := validator.ValidateTransition(context.Background(), order, "Shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.IsSuccess() || outcome.Value() != domain.OrderStatusShipped {
		t.Fatalf("expected Shipped success, got %q (%s)", outcome.Code(), outcome.Message())
	}
}

func TestStatusValidator_ShippingMissingProductIsShortfall(t *testing.T) {
	validator := validation.NewStatusValidator(memory.NewProductRepository(), nil)

	order := domain.Order{
		ID:     9,
		Status: domain.OrderStatusProcessing,
		Items:  []domain.OrderItem{{ProductID: 404, Quantity: 1}},
	}
	outcome, err := validator.ValidateTransition(context.Background(), order, "Shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Code() != validation.CodeInsufficientStockToShip {
		t.Fatalf("missing product must block shipping, got %q", outcome.Code())
	}
}
