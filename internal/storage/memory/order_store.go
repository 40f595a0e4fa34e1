package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderStoreInMemory — простая in-memory реализация OrderRepository.
type orderStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderStore возвращает in-memory хранилище заказов для локальной
// разработки и тестов.
func NewOrderStore() domain.OrderRepository {
	return &orderStoreInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет заказ с позициями, назначая идентификаторы и timestamp.
func (r *orderStoreInMemory) Create(order domain.NewOrder) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor(),
		Items:       make([]domain.OrderLineItem, 0, len(order.Items)),
		CreatedAt:   now,
	}
	for _, item := range order.Items {
		stored.Items = append(stored.Items, domain.OrderLineItem{
			ID:         uuid.NewString(),
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			CreatedAt:  now,
		})
	}

	r.items[stored.ID] = stored
	return copyOrder(stored), nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderStoreInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если >0).
func (r *orderStoreInMemory) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, copyOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Delete удаляет заказ целиком вместе с позициями.
func (r *orderStoreInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.items, id)
	return nil
}

// copyOrder возвращает копию заказа, чтобы избежать непредсказуемых мутаций извне.
func copyOrder(order domain.Order) domain.Order {
	result := order
	result.Items = make([]domain.OrderLineItem, len(order.Items))
	copy(result.Items, order.Items)
	return result
}

var _ domain.OrderRepository = (*orderStoreInMemory)(nil)
