package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func newTestOrder(customerID string) domain.NewOrder {
	return domain.NewOrder{
		CustomerID: customerID,
		Items: []domain.NewLineItem{
			{ProductID: "p-1", Qty: 2, PriceMinor: 1000},
			{ProductID: "p-2", Qty: 1, PriceMinor: 500},
		},
	}
}

func TestOrderStoreCreateAssignsIdentity(t *testing.T) {
	store := NewOrderStore()

	order, err := store.Create(newTestOrder("c-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if order.ID == "" {
		t.Fatal("expected order id to be assigned")
	}
	if order.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
	if order.AmountMinor != 2500 {
		t.Fatalf("amount = %d, want 2500", order.AmountMinor)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	for i, item := range order.Items {
		if item.ID == "" {
			t.Fatalf("item[%d] id is empty", i)
		}
	}
}

func TestOrderStoreGet(t *testing.T) {
	store := NewOrderStore()

	created, err := store.Create(newTestOrder("c-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != created.ID || got.CustomerID != "c-1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := store.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderStoreGetReturnsCopy(t *testing.T) {
	store := NewOrderStore()

	created, err := store.Create(newTestOrder("c-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := store.Get(created.ID)
	got.Items[0].Qty = 999

	reread, _ := store.Get(created.ID)
	if reread.Items[0].Qty != 2 {
		t.Fatalf("stored order mutated through returned copy: qty = %d", reread.Items[0].Qty)
	}
}

func TestOrderStoreListByCustomer(t *testing.T) {
	store := NewOrderStore()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(newTestOrder("c-1")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := store.Create(newTestOrder("c-2")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	orders, err := store.ListByCustomer("c-1", 0)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}

	limited, err := store.ListByCustomer("c-1", 2)
	if err != nil {
		t.Fatalf("ListByCustomer with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 orders with limit, got %d", len(limited))
	}

	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Fatal("orders are not sorted by created_at desc")
		}
	}
}

func TestOrderStoreDelete(t *testing.T) {
	store := NewOrderStore()

	created, err := store.Create(newTestOrder("c-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(created.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}
	if err := store.Delete(created.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on double delete, got %v", err)
	}
}
