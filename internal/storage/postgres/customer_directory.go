package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type customerDirectory struct {
	db *sql.DB
}

// NewCustomerDirectory создаёт PostgreSQL-реализацию CustomerDirectory.
func NewCustomerDirectory(store *Store) domain.CustomerDirectory {
	return &customerDirectory{db: store.DB()}
}

func (d *customerDirectory) FindByID(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var customer domain.Customer
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, &domain.CustomerNotFoundError{CustomerID: id}
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

var _ domain.CustomerDirectory = (*customerDirectory)(nil)
