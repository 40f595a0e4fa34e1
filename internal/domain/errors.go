package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заявке.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")

	// ErrInvalidRequest — запрос нарушает контракт вызова
	// (пустой список позиций, неположительное количество).
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если запрошенный товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderPersistence — хранилище отклонило запись заказа.
	ErrOrderPersistence = errors.New("order persistence failed")
	// ErrStockConflict возвращается каталогом, когда условное списание
	// не прошло по остаткам.
	ErrStockConflict = errors.New("stock decrement rejected")
	// ErrDecrementConflict — списание после сохранения заказа не удалось,
	// и компенсация тоже; заказ требует ручной сверки.
	ErrDecrementConflict = errors.New("post-commit stock decrement conflict")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InvalidRequestError уточняет, чем именно запрос нарушил контракт.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid order request: %s", e.Reason)
}

func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// CustomerNotFoundError указывает, какой идентификатор клиента не найден.
type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found", e.CustomerID)
}

func (e *CustomerNotFoundError) Unwrap() error { return ErrCustomerNotFound }

// ProductNotFoundError называет первый отсутствующий в каталоге товар
// в порядке позиций запроса.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError называет товар и количество, которое не прошло
// проверку доступности.
type InsufficientStockError struct {
	ProductID string
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("quantity %d is not available for product %s", e.Requested, e.ProductID)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StockConflictError возвращается каталогом при отказе условного списания.
type StockConflictError struct {
	ProductID string
	Requested int32
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock decrement of %d rejected for product %s", e.Requested, e.ProductID)
}

func (e *StockConflictError) Unwrap() error { return ErrStockConflict }

// DecrementConflictError сигнализирует, что заказ был сохранён, а списание
// остатков после сохранения не прошло. RolledBack показывает, удалось ли
// компенсирующее удаление заказа; если нет — заказ остаётся в хранилище
// до ручной сверки, и такую ошибку нельзя молча игнорировать.
type DecrementConflictError struct {
	OrderID    string
	RolledBack bool
	Cause      error
}

func (e *DecrementConflictError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("order %s rolled back after failed stock decrement: %v", e.OrderID, e.Cause)
	}
	return fmt.Sprintf("order %s: stock decrement failed and compensation did not complete: %v", e.OrderID, e.Cause)
}

func (e *DecrementConflictError) Unwrap() error { return ErrDecrementConflict }
