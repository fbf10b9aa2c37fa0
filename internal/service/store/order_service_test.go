package store_test

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/metrics"
	"github.com/vladislavdragonenkov/storeguard/internal/service/store"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/memory"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

type fixture struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	carts    domain.CartRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
	engine   *validation.Engine
}

func newFixture() *fixture {
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	engine := validation.NewEngine(validation.Readers{
		Products:  products,
		Customers: memory.NewCustomerDirectory(1),
		Carts:     carts,
	}, metrics.NewValidationMetrics(), nil)
	return &fixture{
		products: products,
		orders:   memory.NewOrderRepository(),
		carts:    carts,
		timeline: memory.NewTimelineRepository(),
		outbox:   memory.NewOutboxRepository(),
		engine:   engine,
	}
}

func (f *fixture) orderService() *store.OrderService {
	return store.NewOrderService(f.orders, f.products, f.timeline, f.outbox, f.engine, nil)
}

func (f *fixture) addProduct(t *testing.T, sku string, priceMinor int64, stock int) domain.Product {
	t.Helper()
	created, err := f.products.Create(context.Background(), domain.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		Slug:          "product-" + sku,
		PriceMinor:    priceMinor,
		IsActive:      true,
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return created
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	product, err := f.products.GetByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.StockQuantity
}

func orderInput(customerID int64, items ...validation.OrderItemInput) validation.CreateOrderInput {
	return validation.CreateOrderInput{
		CustomerID:      customerID,
		PaymentMethod:   "Credit Card",
		ShippingAddress: "Невский проспект, 28",
		Items:           items,
	}
}

func TestOrderService_CreateDecrementsStockAndSnapshotsPrice(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.orderService()

	outcome, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 3}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !outcome.IsSuccess() {
		t.Fatalf("expected success, got %s (%s)", outcome.Code(), outcome.Message())
	}

	order := outcome.Value()
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected Pending, got %s", order.Status)
	}
	if order.AmountMinor != 4500 {
		t.Fatalf("expected amount 4500, got %d", order.AmountMinor)
	}
	if order.Items[0].UnitPriceMinor != 1500 {
		t.Fatalf("expected price snapshot 1500, got %d", order.Items[0].UnitPriceMinor)
	}
	if got := f.stock(t, product.ID); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}

	events, err := f.outbox.PullPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("pull outbox failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "order.created" {
		t.Fatalf("unexpected outbox events: %+v", events)
	}
}

func TestOrderService_CreateValidationFailureLeavesStock(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 5)
	svc := f.orderService()

	outcome, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 6}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure for oversized quantity")
	}
	if got := f.stock(t, product.ID); got != 5 {
		t.Fatalf("stock must stay intact, got %d", got)
	}
}

// refusingProducts имитирует конкурента, успевшего выкупить остаток одного
// товара между валидацией и списанием.
type refusingProducts struct {
	domain.ProductRepository
	refuseID int64
}

func (r *refusingProducts) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	if productID == r.refuseID {
		return false, nil
	}
	return r.ProductRepository.DecrementStock(ctx, productID, quantity)
}

func TestOrderService_CreateCompensatesOnRaceShortfall(t *testing.T) {
	f := newFixture()
	first := f.addProduct(t, "SHELF-1", 1000, 10)
	second := f.addProduct(t, "VASE-1", 2000, 10)

	svc := store.NewOrderService(
		f.orders,
		&refusingProducts{ProductRepository: f.products, refuseID: second.ID},
		f.timeline,
		f.outbox,
		f.engine,
		nil,
	)

	outcome, err := svc.Create(context.Background(), orderInput(1,
		validation.OrderItemInput{ProductID: first.ID, Quantity: 4},
		validation.OrderItemInput{ProductID: second.ID, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !outcome.IsFailure() || outcome.Code() != validation.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK failure, got %s (%s)", outcome.Code(), outcome.Message())
	}

	// Уже списанный первый товар должен быть возвращён на склад.
	if got := f.stock(t, first.ID); got != 10 {
		t.Fatalf("expected compensated stock 10, got %d", got)
	}
}

func TestOrderService_UpdateStatusPersistsAndRecordsTimeline(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.orderService()

	created, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 2}))
	if err != nil || !created.IsSuccess() {
		t.Fatalf("create failed: %v / %s", err, created.Message())
	}
	orderID := created.Value().ID

	outcome, err := svc.UpdateStatus(context.Background(), orderID, "Processing")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if !outcome.IsSuccess() || outcome.Value().Status != domain.OrderStatusProcessing {
		t.Fatalf("expected Processing, got %+v", outcome.Value())
	}

	timeline, err := svc.Timeline(context.Background(), orderID)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	events := timeline.Value()
	if len(events) != 2 {
		t.Fatalf("expected 2 timeline events, got %d", len(events))
	}
	if events[1].Type != "OrderStatusChanged" || events[1].Reason != "Pending -> Processing" {
		t.Fatalf("unexpected timeline event: %+v", events[1])
	}
}

func TestOrderService_UpdateStatusSameStatusIsNoop(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.orderService()

	created, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil || !created.IsSuccess() {
		t.Fatalf("create failed: %v / %s", err, created.Message())
	}
	orderID := created.Value().ID

	outcome, err := svc.UpdateStatus(context.Background(), orderID, "pending")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if !outcome.IsSuccess() || outcome.Value().Status != domain.OrderStatusPending {
		t.Fatalf("expected no-op success, got %+v", outcome.Value())
	}

	timeline, err := svc.Timeline(context.Background(), orderID)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(timeline.Value()) != 1 {
		t.Fatalf("no-op must not append timeline events, got %d", len(timeline.Value()))
	}
}

func TestOrderService_UpdateStatusRejectsInvalidTransition(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.orderService()

	created, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil || !created.IsSuccess() {
		t.Fatalf("create failed: %v / %s", err, created.Message())
	}

	outcome, err := svc.UpdateStatus(context.Background(), created.Value().ID, "Shipped")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if !outcome.IsFailure() || outcome.Code() != validation.CodeInvalidStatusTransition {
		t.Fatalf("expected INVALID_STATUS_TRANSITION, got %s", outcome.Code())
	}
}

func TestOrderService_CancelEnqueuesCancelEvent(t *testing.T) {
	f := newFixture()
	product := f.addProduct(t, "SHELF-1", 1500, 10)
	svc := f.orderService()

	created, err := svc.Create(context.Background(), orderInput(1, validation.OrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil || !created.IsSuccess() {
		t.Fatalf("create failed: %v / %s", err, created.Message())
	}

	outcome, err := svc.UpdateStatus(context.Background(), created.Value().ID, "Cancelled")
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("cancel failed: %v / %s", err, outcome.Message())
	}

	events, err := f.outbox.PullPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("pull outbox failed: %v", err)
	}
	if len(events) != 2 || events[1].EventType != "order.canceled" {
		t.Fatalf("unexpected outbox events: %+v", events)
	}
}

func TestOrderService_GetUnknownOrder(t *testing.T) {
	f := newFixture()
	svc := f.orderService()

	outcome, err := svc.Get(context.Background(), 404)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !outcome.IsFailure() || outcome.Code() != domain.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", outcome.Code())
	}
}
