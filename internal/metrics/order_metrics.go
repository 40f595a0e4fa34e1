package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа создания заказа для лейбла reason.
const (
	FailureInvalidRequest    = "invalid_request"
	FailureCustomerNotFound  = "customer_not_found"
	FailureProductNotFound   = "product_not_found"
	FailureInsufficientStock = "insufficient_stock"
	FailurePersistence       = "persistence"
	FailureDecrementConflict = "decrement_conflict"
)

// OrderMetrics содержит метрики создания заказов.
type OrderMetrics struct {
	// Счётчики результатов
	ordersCreated  prometheus.Counter
	createFailures *prometheus.CounterVec

	// Гистограмма времени создания заказа
	createDuration prometheus.Histogram

	// Счётчики конфликтов списания остатков
	decrementConflicts prometheus.Counter
	compensations      prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		createFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_create_failures_total",
			Help: "Total number of rejected order creation attempts grouped by reason",
		}, []string{"reason"}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		decrementConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_stock_decrement_conflicts_total",
			Help: "Total number of post-commit stock decrements lost to a concurrent order",
		}),
		compensations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_compensating_deletes_total",
			Help: "Total number of persisted orders deleted after a lost stock decrement",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик успешно созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordCreateFailure увеличивает счётчик отказов по причине reason.
func (m *OrderMetrics) RecordCreateFailure(reason string) {
	m.createFailures.WithLabelValues(reason).Inc()
}

// RecordCreateDuration записывает время создания заказа.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
}

// RecordDecrementConflict увеличивает счётчик проигранных списаний.
func (m *OrderMetrics) RecordDecrementConflict() {
	m.decrementConflicts.Inc()
}

// RecordCompensatingDelete увеличивает счётчик компенсирующих удалений заказа.
func (m *OrderMetrics) RecordCompensatingDelete() {
	m.compensations.Inc()
}
