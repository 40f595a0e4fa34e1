package domain

import "time"

// CustomerDirectory резолвит идентификатор клиента в запись справочника.
type CustomerDirectory interface {
	// FindByID возвращает клиента или CustomerNotFoundError.
	FindByID(id string) (Customer, error)
}

// ProductCatalog — авторитетный источник цен и остатков товаров.
type ProductCatalog interface {
	// FindAllByID возвращает только найденные товары; порядок не гарантируется.
	FindAllByID(ids []string) ([]CatalogProduct, error)
	// DecrementStock атомарно списывает остатки по всем позициям батча.
	// Если хотя бы по одной позиции остатка не хватает, не применяется
	// ни одно списание и возвращается StockConflictError.
	DecrementStock(items []StockDecrement) error
}

// OrderRepository сохраняет заказы вместе с позициями.
type OrderRepository interface {
	// Create атомарно сохраняет заказ, назначая идентификаторы и timestamp.
	Create(order NewOrder) (Order, error)
	// Get возвращает заказ или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если >0).
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Delete удаляет заказ целиком; используется как компенсация,
	// когда списание остатков после сохранения не прошло.
	Delete(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
