package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// CustomerDirectory — простая in-memory реализация справочника клиентов
// для локальной разработки и тестов.
type CustomerDirectory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerDirectory возвращает пустой in-memory справочник.
func NewCustomerDirectory() *CustomerDirectory {
	return &CustomerDirectory{
		items: make(map[string]domain.Customer),
	}
}

// Put добавляет или заменяет запись клиента.
func (d *CustomerDirectory) Put(customer domain.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[customer.ID] = customer
}

// FindByID возвращает клиента или CustomerNotFoundError.
func (d *CustomerDirectory) FindByID(id string) (domain.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	customer, ok := d.items[id]
	if !ok {
		return domain.Customer{}, &domain.CustomerNotFoundError{CustomerID: id}
	}
	return customer, nil
}

var _ domain.CustomerDirectory = (*CustomerDirectory)(nil)
