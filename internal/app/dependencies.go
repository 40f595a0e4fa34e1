package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Customers domain.CustomerDirectory
	Catalog   domain.ProductCatalog
	Orders    domain.OrderRepository
	Outbox    domain.OutboxRepository
	Store     *postgres.Store
	Logger    *log.Entry
}

// NewDependencies создаёт зависимости приложения. При заданном DSN
// используется PostgreSQL (схема доводится миграциями до актуальной);
// без DSN — in-memory хранилища с демо-данными для локальной разработки.
func NewDependencies(ctx context.Context, postgresDSN string, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if postgresDSN == "" {
		logger.Info("postgres DSN не задан, используем in-memory хранилища")
		return newMemoryDependencies(logger), nil
	}

	store, err := postgres.Open(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}
	logger.Info("postgres хранилище инициализировано")

	return &Dependencies{
		Customers: postgres.NewCustomerDirectory(store),
		Catalog:   postgres.NewProductCatalog(store),
		Orders:    postgres.NewOrderStore(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Store:     store,
		Logger:    logger,
	}, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

func newMemoryDependencies(logger *log.Entry) *Dependencies {
	customers := memory.NewCustomerDirectory()
	catalog := memory.NewProductCatalog()
	seedDemoData(customers, catalog)

	return &Dependencies{
		Customers: customers,
		Catalog:   catalog,
		Orders:    memory.NewOrderStore(),
		Outbox:    memory.NewOutboxRepository(),
		Logger:    logger,
	}
}

// seedDemoData наполняет in-memory хранилища демо-данными,
// чтобы API можно было пощупать сразу после запуска.
func seedDemoData(customers *memory.CustomerDirectory, catalog *memory.ProductCatalog) {
	customers.Put(domain.Customer{ID: "c-1001", Name: "Ivan Petrov", Email: "ivan.petrov@example.com"})
	customers.Put(domain.Customer{ID: "c-1002", Name: "Anna Sidorova", Email: "anna.sidorova@example.com"})

	catalog.Put(domain.CatalogProduct{ID: "p-100", Name: "Keyboard", PriceMinor: 459900, AvailableQty: 25})
	catalog.Put(domain.CatalogProduct{ID: "p-101", Name: "Mouse", PriceMinor: 129900, AvailableQty: 40})
	catalog.Put(domain.CatalogProduct{ID: "p-102", Name: "Monitor", PriceMinor: 1899900, AvailableQty: 5})
}
