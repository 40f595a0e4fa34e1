package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/order"
)

const defaultListOrdersLimit = 100

// Handler реализует HTTP API поверх сервиса создания заказов.
type Handler struct {
	service *order.Service
	orders  domain.OrderRepository
	logger  *log.Entry
}

// NewHandler конструирует HTTP-обработчик с зависимостями.
func NewHandler(service *order.Service, orders domain.OrderRepository, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Handler{
		service: service,
		orders:  orders,
		logger:  logger,
	}
}

// CreateOrder принимает запрос, прогоняет его через сервис создания заказа
// и транслирует доменные ошибки в HTTP-статусы.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]order.RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.RequestedItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	created, err := h.service.Execute(order.CreateOrderRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	found, err := h.orders.Get(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", orderID)
			return
		}
		h.logger.WithError(err).WithField("order_id", orderID).Error("failed to load order")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(found))
}

// ListCustomerOrders возвращает заказы клиента, новые первыми.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id_required", "")
		return
	}

	limit := defaultListOrdersLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", raw)
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListByCustomer(customerID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("customer_id", customerID).Error("failed to list orders")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, result)
}

// writeDomainError переводит таксономию ошибок создания заказа в HTTP-статусы.
// Каждый вид различим для клиента по полю error.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, domain.ErrDecrementConflict):
		h.logger.WithError(err).Error("order creation ended in decrement conflict")
		writeError(w, http.StatusConflict, "decrement_conflict", err.Error())
	case errors.Is(err, domain.ErrOrderPersistence):
		h.logger.WithError(err).Error("order persistence failed")
		writeError(w, http.StatusInternalServerError, "persistence_failure", "failed to persist order")
	default:
		h.logger.WithError(err).Error("order creation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
