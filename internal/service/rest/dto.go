package rest

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// CreateOrderItem — позиция запроса на создание заказа.
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// CreateOrderRequest — тело POST /orders.
type CreateOrderRequest struct {
	CustomerID string            `json:"customer_id"`
	Items      []CreateOrderItem `json:"items"`
}

// OrderItemResponse — позиция заказа в ответе API.
type OrderItemResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Qty        int32     `json:"qty"`
	PriceMinor int64     `json:"price_minor"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderResponse — заказ в ответе API.
type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	AmountMinor int64               `json:"amount_minor"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ErrorResponse — единый формат ошибки API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toOrderResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			CreatedAt:  item.CreatedAt,
		})
	}
	return OrderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}
