package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

const aggregateTypeOrder = "order"

// RequestedItem — одна позиция запроса на создание заказа.
type RequestedItem struct {
	ProductID string
	Qty       int32
}

// CreateOrderRequest — запрос на создание заказа: клиент и упорядоченный
// список позиций. Повторы одного товара допускаются и остаются отдельными
// позициями заказа.
type CreateOrderRequest struct {
	CustomerID string
	Items      []RequestedItem
}

// Validate проверяет контракт вызова. Нарушение — ошибка вызывающей стороны,
// а не бизнес-отказ, поэтому проверка выполняется до обращения к коллабораторам.
func (r CreateOrderRequest) Validate() error {
	if r.CustomerID == "" {
		return &domain.InvalidRequestError{Reason: "customer_id is required"}
	}
	if len(r.Items) == 0 {
		return &domain.InvalidRequestError{Reason: "order must contain at least one item"}
	}
	for idx, item := range r.Items {
		if item.ProductID == "" {
			return &domain.InvalidRequestError{Reason: fmt.Sprintf("item[%d].product_id is required", idx)}
		}
		if item.Qty <= 0 {
			return &domain.InvalidRequestError{Reason: fmt.Sprintf("item[%d].qty must be > 0", idx)}
		}
	}
	return nil
}

// Service создаёт заказы: проверяет клиента и товары, фиксирует цены,
// сохраняет заказ и списывает остатки в каталоге.
type Service struct {
	customers domain.CustomerDirectory
	catalog   domain.ProductCatalog
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox задаёт outbox для публикации события order.created.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(s *Service) {
		s.outbox = repo
	}
}

// WithMetrics задаёт метрики создания заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService конструирует сервис создания заказов. Три обязательных
// коллаборатора передаются явно; outbox и метрики опциональны.
func NewService(
	customers domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	orders domain.OrderRepository,
	options ...Option,
) *Service {
	s := &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    log.WithField("component", "order-service"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Execute выполняет линейный конвейер создания заказа. Каждая проверка
// завершает операцию без побочных эффектов; мутация каталога происходит
// только после успешного сохранения заказа.
func (s *Service) Execute(req CreateOrderRequest) (domain.Order, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		s.recordFailure(metrics.FailureInvalidRequest)
		return domain.Order{}, err
	}

	customer, err := s.customers.FindByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			s.recordFailure(metrics.FailureCustomerNotFound)
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("resolve customer %s: %w", req.CustomerID, err)
	}

	byID, err := s.resolveProducts(req)
	if err != nil {
		return domain.Order{}, err
	}

	// Advisory-проверка доступности по снимку каталога. Повторы одного товара
	// агрегируются: две позиции, каждая из которых проходит по отдельности,
	// но в сумме превышает остаток, отклоняются здесь. Авторитетная проверка —
	// условное списание после сохранения заказа.
	requested := make(map[string]int32, len(byID))
	for _, item := range req.Items {
		requested[item.ProductID] += item.Qty
		if requested[item.ProductID] > byID[item.ProductID].AvailableQty {
			s.recordFailure(metrics.FailureInsufficientStock)
			return domain.Order{}, &domain.InsufficientStockError{ProductID: item.ProductID, Requested: item.Qty}
		}
	}

	// Позиции заказа повторяют порядок запроса; цена снимается с каталога
	// в момент проверки.
	newOrder := domain.NewOrder{
		CustomerID: customer.ID,
		Items:      make([]domain.NewLineItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		newOrder.Items = append(newOrder.Items, domain.NewLineItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: byID[item.ProductID].PriceMinor,
		})
	}

	order, err := s.orders.Create(newOrder)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Error("failed to persist order")
		s.recordFailure(metrics.FailurePersistence)
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}

	// Списание выводится из позиций сохранённого заказа, не из исходного
	// запроса: если запись не состоялась, каталог не трогаем.
	if err := s.catalog.DecrementStock(aggregateDecrements(order.Items)); err != nil {
		return s.compensate(order, err)
	}

	s.enqueueCreatedEvent(order)

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.RecordCreateDuration(time.Since(started))
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"items":        len(order.Items),
		"amount_minor": order.AmountMinor,
	}).Info("order created")

	return order, nil
}

// resolveProducts выполняет батч-поиск товаров и проверку существования.
// Первый отсутствующий идентификатор называется в порядке позиций запроса.
func (s *Service) resolveProducts(req CreateOrderRequest) (map[string]domain.CatalogProduct, error) {
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindAllByID(ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	if len(products) == 0 {
		s.recordFailure(metrics.FailureProductNotFound)
		return nil, &domain.ProductNotFoundError{ProductID: req.Items[0].ProductID}
	}

	byID := make(map[string]domain.CatalogProduct, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, item := range req.Items {
		if _, ok := byID[item.ProductID]; !ok {
			s.recordFailure(metrics.FailureProductNotFound)
			return nil, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	return byID, nil
}

// compensate обрабатывает отказ списания после того, как заказ уже сохранён.
// Заказ удаляется, и проигравший запрос получает InsufficientStock; если
// удалить не удалось, возвращается DecrementConflict, а заказ остаётся
// в хранилище до ручной сверки.
func (s *Service) compensate(order domain.Order, cause error) (domain.Order, error) {
	if s.metrics != nil {
		s.metrics.RecordDecrementConflict()
	}
	logger := s.logger.WithFields(log.Fields{"order_id": order.ID, "customer_id": order.CustomerID})

	if delErr := s.orders.Delete(order.ID); delErr != nil {
		logger.WithError(delErr).WithField("decrement_error", cause).Error("stock decrement failed and compensating delete failed, order needs reconciliation")
		s.recordFailure(metrics.FailureDecrementConflict)
		return domain.Order{}, &domain.DecrementConflictError{
			OrderID: order.ID,
			Cause:   errors.Join(cause, delErr),
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCompensatingDelete()
	}

	var conflict *domain.StockConflictError
	if errors.As(cause, &conflict) {
		logger.WithField("product_id", conflict.ProductID).Warn("stock decrement lost to a concurrent order, order rolled back")
		s.recordFailure(metrics.FailureInsufficientStock)
		return domain.Order{}, &domain.InsufficientStockError{ProductID: conflict.ProductID, Requested: conflict.Requested}
	}

	logger.WithError(cause).Error("stock decrement failed, order rolled back")
	s.recordFailure(metrics.FailureDecrementConflict)
	return domain.Order{}, &domain.DecrementConflictError{OrderID: order.ID, RolledBack: true, Cause: cause}
}

// aggregateDecrements сводит позиции заказа в один батч списаний на товар.
func aggregateDecrements(items []domain.OrderLineItem) []domain.StockDecrement {
	totals := make(map[string]int32, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := totals[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		totals[item.ProductID] += item.Qty
	}

	result := make([]domain.StockDecrement, 0, len(order))
	for _, id := range order {
		result = append(result, domain.StockDecrement{ProductID: id, Qty: totals[id]})
	}
	return result
}

// enqueueCreatedEvent кладёт событие order.created в outbox. Заказ уже
// сохранён и остатки списаны, поэтому ошибка постановки события не отменяет
// операцию и только логируется.
func (s *Service) enqueueCreatedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	items := make([]kafka.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, kafka.OrderEventItem{ProductID: item.ProductID, Qty: item.Qty, PriceMinor: item.PriceMinor})
	}

	event := kafka.NewOrderCreatedEvent(order.ID, order.CustomerID, order.AmountMinor, items)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order.created payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: aggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     string(event.EventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order.created event")
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordCreateFailure(reason)
	}
}
