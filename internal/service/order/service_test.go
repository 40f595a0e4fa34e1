package order

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

const (
	testCustomerID = "c-1"
	testProductID  = "p-1"
)

type fixture struct {
	customers *memory.CustomerDirectory
	catalog   *memory.ProductCatalog
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := memory.NewCustomerDirectory()
	customers.Put(domain.Customer{ID: testCustomerID, Name: "Ivan Petrov", Email: "ivan@example.com"})

	catalog := memory.NewProductCatalog()
	catalog.Put(domain.CatalogProduct{ID: testProductID, Name: "Keyboard", PriceMinor: 1000, AvailableQty: 5})

	return &fixture{
		customers: customers,
		catalog:   catalog,
		orders:    memory.NewOrderStore(),
		outbox:    memory.NewOutboxRepository(),
	}
}

func (f *fixture) service() *Service {
	return NewService(f.customers, f.catalog, f.orders, WithOutbox(f.outbox))
}

func TestExecuteCreatesOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	order, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 3}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, order.ID)
	require.Equal(t, testCustomerID, order.CustomerID)
	require.Equal(t, int64(3000), order.AmountMinor)
	require.Len(t, order.Items, 1)
	require.Equal(t, testProductID, order.Items[0].ProductID)
	require.Equal(t, int32(3), order.Items[0].Qty)
	require.Equal(t, int64(1000), order.Items[0].PriceMinor)
	require.False(t, order.CreatedAt.IsZero())

	stored, err := f.orders.Get(order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, stored.ID)

	qty, ok := f.catalog.AvailableQty(testProductID)
	require.True(t, ok)
	require.Equal(t, int32(2), qty)
}

func TestExecuteCapturesPriceAtValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	order, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 1}},
	})
	require.NoError(t, err)

	// Цена в каталоге меняется после оформления, заказ остаётся с прежней ценой.
	f.catalog.Put(domain.CatalogProduct{ID: testProductID, Name: "Keyboard", PriceMinor: 9999, AvailableQty: 4})

	stored, err := f.orders.Get(order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), stored.Items[0].PriceMinor)
	require.Equal(t, int64(1000), stored.AmountMinor)
}

func TestExecuteValidatesRequest(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	cases := []struct {
		name string
		req  CreateOrderRequest
	}{
		{name: "empty customer", req: CreateOrderRequest{Items: []RequestedItem{{ProductID: testProductID, Qty: 1}}}},
		{name: "no items", req: CreateOrderRequest{CustomerID: testCustomerID}},
		{name: "empty product id", req: CreateOrderRequest{CustomerID: testCustomerID, Items: []RequestedItem{{Qty: 1}}}},
		{name: "zero qty", req: CreateOrderRequest{CustomerID: testCustomerID, Items: []RequestedItem{{ProductID: testProductID, Qty: 0}}}},
		{name: "negative qty", req: CreateOrderRequest{CustomerID: testCustomerID, Items: []RequestedItem{{ProductID: testProductID, Qty: -1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Execute(tc.req)
			require.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}

	// Валидация отрабатывает до обращений к хранилищам: каталог не тронут.
	qty, ok := f.catalog.AvailableQty(testProductID)
	require.True(t, ok)
	require.Equal(t, int32(5), qty)
}

func TestExecuteCustomerNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: "c-missing",
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	var notFound *domain.CustomerNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "c-missing", notFound.CustomerID)

	orders, err := f.orders.ListByCustomer("c-missing", 0)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestExecuteProductNotFoundNamesFirstMissing(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.CatalogProduct{ID: "p-2", Name: "Mouse", PriceMinor: 500, AvailableQty: 10})
	svc := f.service()

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items: []RequestedItem{
			{ProductID: testProductID, Qty: 1},
			{ProductID: "p-9", Qty: 1},
			{ProductID: "p-8", Qty: 1},
		},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "p-9", notFound.ProductID)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(5), qty)
}

func TestExecuteAllProductsMissing(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: "p-9", Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestExecuteInsufficientStock(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 7}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, testProductID, insufficient.ProductID)
	require.Equal(t, int32(7), insufficient.Requested)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(5), qty)
}

func TestExecuteAggregatesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	// Каждая строка по отдельности проходит по остатку (5), но сумма 3+3
	// превышает его, поэтому заказ отклоняется до сохранения.
	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items: []RequestedItem{
			{ProductID: testProductID, Qty: 3},
			{ProductID: testProductID, Qty: 3},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(5), qty)
}

func TestExecuteDuplicateLinesStayDistinct(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	order, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items: []RequestedItem{
			{ProductID: testProductID, Qty: 2},
			{ProductID: testProductID, Qty: 3},
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	require.Equal(t, int32(2), order.Items[0].Qty)
	require.Equal(t, int32(3), order.Items[1].Qty)
	require.Equal(t, int64(5000), order.AmountMinor)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(0), qty)
}

type failingOrderStore struct {
	domain.OrderRepository
	createErr error
}

func (s *failingOrderStore) Create(domain.NewOrder) (domain.Order, error) {
	return domain.Order{}, s.createErr
}

func TestExecutePersistenceFailureSkipsDecrement(t *testing.T) {
	f := newFixture(t)
	f.orders = &failingOrderStore{createErr: errors.New("disk full")}
	svc := f.service()

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrOrderPersistence)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(5), qty)
}

// staleCatalog завышает остаток в снимке, чтобы advisory-проверка прошла,
// а условное списание столкнулось с реальным остатком. Так моделируется
// конкурирующий заказ, успевший списать остаток между проверкой и записью.
type staleCatalog struct {
	*memory.ProductCatalog
	reportedQty int32
}

func (c *staleCatalog) FindAllByID(ids []string) ([]domain.CatalogProduct, error) {
	products, err := c.ProductCatalog.FindAllByID(ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].AvailableQty = c.reportedQty
	}
	return products, nil
}

func TestExecuteDecrementConflictRollsBackOrder(t *testing.T) {
	f := newFixture(t)
	stale := &staleCatalog{ProductCatalog: f.catalog, reportedQty: 100}
	svc := NewService(f.customers, stale, f.orders, WithOutbox(f.outbox))

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 50}},
	})
	// Проигравший конкурентную гонку запрос получает тот же InsufficientStock,
	// что и запрос, отклонённый advisory-проверкой.
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	orders, listErr := f.orders.ListByCustomer(testCustomerID, 0)
	require.NoError(t, listErr)
	require.Empty(t, orders, "компенсирующее удаление должно убрать заказ")

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(5), qty)

	pending, pullErr := f.outbox.PullPending(10)
	require.NoError(t, pullErr)
	require.Empty(t, pending, "событие не публикуется для откатанного заказа")
}

// brokenCatalog роняет списание инфраструктурной ошибкой, не связанной с остатками.
type brokenCatalog struct {
	*memory.ProductCatalog
	decrementErr error
}

func (c *brokenCatalog) DecrementStock([]domain.StockDecrement) error {
	return c.decrementErr
}

func TestExecuteDecrementFailureReturnsConflict(t *testing.T) {
	f := newFixture(t)
	broken := &brokenCatalog{ProductCatalog: f.catalog, decrementErr: errors.New("connection reset")}
	svc := NewService(f.customers, broken, f.orders)

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrDecrementConflict)

	var conflict *domain.DecrementConflictError
	require.ErrorAs(t, err, &conflict)
	require.True(t, conflict.RolledBack)

	orders, listErr := f.orders.ListByCustomer(testCustomerID, 0)
	require.NoError(t, listErr)
	require.Empty(t, orders)
}

type stuckDeleteStore struct {
	domain.OrderRepository
	deleteErr error
}

func (s *stuckDeleteStore) Delete(string) error { return s.deleteErr }

func TestExecuteCompensationFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	stale := &staleCatalog{ProductCatalog: f.catalog, reportedQty: 100}
	stuck := &stuckDeleteStore{OrderRepository: f.orders, deleteErr: errors.New("delete timeout")}
	svc := NewService(f.customers, stale, stuck)

	_, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 50}},
	})
	require.ErrorIs(t, err, domain.ErrDecrementConflict)

	var conflict *domain.DecrementConflictError
	require.ErrorAs(t, err, &conflict)
	require.False(t, conflict.RolledBack)
	require.ErrorIs(t, conflict.Cause, domain.ErrStockConflict)

	// Заказ остаётся в хранилище до ручной сверки.
	orders, listErr := f.orders.ListByCustomer(testCustomerID, 0)
	require.NoError(t, listErr)
	require.Len(t, orders, 1)
}

func TestExecuteEnqueuesOrderCreatedEvent(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	order, err := svc.Execute(CreateOrderRequest{
		CustomerID: testCustomerID,
		Items:      []RequestedItem{{ProductID: testProductID, Qty: 2}},
	})
	require.NoError(t, err)

	pending, err := f.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	msg := pending[0]
	require.Equal(t, "order", msg.AggregateType)
	require.Equal(t, order.ID, msg.AggregateID)
	require.Equal(t, "order.created", msg.EventType)

	// Payload повторяет схему события каталога kafka, не собственный формат.
	var payload kafka.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, kafka.EventTypeOrderCreated, payload.EventType)
	require.Equal(t, order.ID, payload.OrderID)
	require.Equal(t, testCustomerID, payload.CustomerID)
	require.Equal(t, int64(2000), payload.AmountMinor)
	require.Len(t, payload.Items, 1)
	require.Equal(t, int32(2), payload.Items[0].Qty)
	require.Equal(t, int64(1000), payload.Items[0].PriceMinor)
	require.False(t, payload.Timestamp.IsZero())
}

func TestExecuteConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.catalog.Put(domain.CatalogProduct{ID: testProductID, Name: "Keyboard", PriceMinor: 1000, AvailableQty: 5})
	svc := f.service()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.Execute(CreateOrderRequest{
				CustomerID: testCustomerID,
				Items:      []RequestedItem{{ProductID: testProductID, Qty: 3}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	// Остатка 5 хватает ровно на один заказ по 3 единицы.
	require.Equal(t, 1, succeeded)

	qty, _ := f.catalog.AvailableQty(testProductID)
	require.Equal(t, int32(2), qty)
	require.GreaterOrEqual(t, qty, int32(0))

	orders, err := f.orders.ListByCustomer(testCustomerID, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestAggregateDecrements(t *testing.T) {
	items := []domain.OrderLineItem{
		{ProductID: "p-1", Qty: 2},
		{ProductID: "p-2", Qty: 1},
		{ProductID: "p-1", Qty: 3},
	}

	got := aggregateDecrements(items)
	require.Equal(t, []domain.StockDecrement{
		{ProductID: "p-1", Qty: 5},
		{ProductID: "p-2", Qty: 1},
	}, got)
}
