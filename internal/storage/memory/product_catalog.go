package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// ProductCatalog — in-memory каталог товаров. Условное списание остатков
// выполняется под одной блокировкой, поэтому конкурирующие заказы не могут
// увести остаток в минус.
type ProductCatalog struct {
	mu    sync.RWMutex
	items map[string]domain.CatalogProduct
}

// NewProductCatalog возвращает пустой in-memory каталог.
func NewProductCatalog() *ProductCatalog {
	return &ProductCatalog{
		items: make(map[string]domain.CatalogProduct),
	}
}

// Put добавляет или заменяет товар в каталоге.
func (c *ProductCatalog) Put(product domain.CatalogProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[product.ID] = product
}

// FindAllByID возвращает только найденные товары; порядок не гарантируется.
func (c *ProductCatalog) FindAllByID(ids []string) ([]domain.CatalogProduct, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	result := make([]domain.CatalogProduct, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if product, ok := c.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// DecrementStock атомарно списывает остатки по всему батчу. Сначала
// проверяются все позиции, потом применяются все списания: при нехватке
// остатка ни одно списание не выполняется и возвращается StockConflictError.
func (c *ProductCatalog) DecrementStock(items []domain.StockDecrement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		product, ok := c.items[item.ProductID]
		if !ok {
			return &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
		if product.AvailableQty < item.Qty {
			return &domain.StockConflictError{ProductID: item.ProductID, Requested: item.Qty}
		}
	}

	now := time.Now().UTC()
	for _, item := range items {
		product := c.items[item.ProductID]
		product.AvailableQty -= item.Qty
		product.UpdatedAt = now
		c.items[item.ProductID] = product
	}
	return nil
}

// AvailableQty возвращает текущий остаток товара (используется в тестах).
func (c *ProductCatalog) AvailableQty(id string) (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.items[id]
	if !ok {
		return 0, false
	}
	return product.AvailableQty, true
}

var _ domain.ProductCatalog = (*ProductCatalog)(nil)
