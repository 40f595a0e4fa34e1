package domain

import "time"

// Customer — запись клиента из справочника.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
