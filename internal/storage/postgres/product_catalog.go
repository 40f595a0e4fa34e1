package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type productCatalog struct {
	db *sql.DB
}

// NewProductCatalog создаёт PostgreSQL-реализацию ProductCatalog.
func NewProductCatalog(store *Store) domain.ProductCatalog {
	return &productCatalog{db: store.DB()}
}

func (c *productCatalog) FindAllByID(ids []string) ([]domain.CatalogProduct, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, price_minor, available_qty, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.CatalogProduct, 0, len(ids))
	for rows.Next() {
		var product domain.CatalogProduct
		if err := rows.Scan(
			&product.ID, &product.Name, &product.PriceMinor,
			&product.AvailableQty, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return result, nil
}

// DecrementStock списывает остатки одной транзакцией. Условие
// available_qty >= qty в каждом UPDATE закрывает гонку между проверкой
// доступности и списанием: проигравший конкурентный заказ получает
// StockConflictError, остаток никогда не уходит в минус.
func (c *productCatalog) DecrementStock(items []domain.StockDecrement) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, item := range items {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET available_qty = available_qty - $2,
			    updated_at = NOW()
			WHERE id = $1
			  AND available_qty >= $2
		`, item.ProductID, item.Qty)
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			exists, existsErr := c.productExistsTx(ctx, tx, item.ProductID)
			if existsErr != nil {
				err = existsErr
				return err
			}
			if !exists {
				err = &domain.ProductNotFoundError{ProductID: item.ProductID}
				return err
			}
			err = &domain.StockConflictError{ProductID: item.ProductID, Requested: item.Qty}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock decrement: %w", err)
	}

	return nil
}

func (c *productCatalog) productExistsTx(ctx context.Context, tx *sql.Tx, productID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

var _ domain.ProductCatalog = (*productCatalog)(nil)
