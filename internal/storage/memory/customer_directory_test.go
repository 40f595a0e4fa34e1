package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestCustomerDirectoryFindByID(t *testing.T) {
	dir := NewCustomerDirectory()
	dir.Put(domain.Customer{ID: "c-1", Name: "Ivan Petrov", Email: "ivan@example.com"})

	customer, err := dir.FindByID("c-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if customer.Name != "Ivan Petrov" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
}

func TestCustomerDirectoryNotFound(t *testing.T) {
	dir := NewCustomerDirectory()

	_, err := dir.FindByID("c-404")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	var notFound *domain.CustomerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected CustomerNotFoundError, got %T", err)
	}
	if notFound.CustomerID != "c-404" {
		t.Fatalf("unexpected customer id in error: %s", notFound.CustomerID)
	}
}
