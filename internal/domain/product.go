package domain

import "time"

// CatalogProduct — снимок товара из каталога: цена и доступный остаток.
// Мутируется только самим каталогом; сервис создания заказа читает снимок
// и передаёт каталогу батч списаний.
type CatalogProduct struct {
	ID   string
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// AvailableQty — доступный к продаже остаток; не бывает отрицательным.
	AvailableQty int32
	UpdatedAt    time.Time
}

// StockDecrement описывает списание остатка по одному товару.
type StockDecrement struct {
	ProductID string
	Qty       int32
}
