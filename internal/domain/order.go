package domain

import "time"

// OrderLineItem представляет одну позицию заказа.
type OrderLineItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — идентификатор товара в каталоге.
	ProductID string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент оформления заказа.
	// Последующие изменения цены в каталоге не затрагивают уже созданные заказы.
	PriceMinor int64
	// CreatedAt фиксирует момент сохранения позиции.
	CreatedAt time.Time
}

// Order — заказ клиента; после создания состав позиций не меняется.
type Order struct {
	ID          string
	CustomerID  string
	AmountMinor int64
	Items       []OrderLineItem
	CreatedAt   time.Time
}

// NewLineItem описывает позицию ещё не сохранённого заказа.
type NewLineItem struct {
	ProductID  string
	Qty        int32
	PriceMinor int64
}

// NewOrder — заявка на сохранение заказа.
// Идентификаторы и timestamp назначает OrderStore при записи.
type NewOrder struct {
	CustomerID string
	Items      []NewLineItem
}

// AmountMinor суммирует стоимость позиций: qty * price.
func (o NewOrder) AmountMinor() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += int64(item.Qty) * item.PriceMinor
	}
	return sum
}

// ValidateInvariants проверяет базовые инварианты заявки и возвращает список замечаний.
func (o NewOrder) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}
