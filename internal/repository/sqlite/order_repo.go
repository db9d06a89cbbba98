package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// orderRepository implements repository.OrderRepository for SQLite.
type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a new SQLite order repository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// GetByID retrieves an order by ID.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, customer_id, status, total_price, created_at, updated_at FROM orders WHERE id = ?`

	order := &domain.Order{}
	var status string
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&status,
		&order.TotalPrice,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	order.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	order.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return order, nil
}

// ListSummaries returns all orders joined with customer display fields,
// newest first. Customers removed by an admin come back with empty
// display fields rather than dropping the order.
func (r *orderRepository) ListSummaries(ctx context.Context) ([]*domain.OrderSummary, error) {
	query := `
		SELECT o.id, o.customer_id, o.status, o.total_price, o.created_at, o.updated_at,
		       COALESCE(u.account, ''), COALESCE(u.name, '')
		FROM orders o
		LEFT JOIN users u ON o.customer_id = u.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.OrderSummary
	for rows.Next() {
		summary := &domain.OrderSummary{}
		var status string
		var createdAt, updatedAt string

		err := rows.Scan(
			&summary.ID,
			&summary.CustomerID,
			&status,
			&summary.TotalPrice,
			&createdAt,
			&updatedAt,
			&summary.CustomerAccount,
			&summary.CustomerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		summary.Status = domain.OrderStatus(status)
		summary.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		summary.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return summaries, nil
}

// UpdateStatus sets the status of an order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete hard-deletes the order row. Items are not cascaded.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Stats recomputes the order aggregates with plain aggregate queries.
func (r *orderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{
		CountByStatus: make(map[domain.OrderStatus]int64),
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0), COALESCE(AVG(total_price), 0) FROM orders`,
	).Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.AverageOrderValue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.CountByStatus[domain.OrderStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return stats, nil
}

// CountItemsByProduct counts order items referencing a product.
func (r *orderRepository) CountItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = ?`, productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}

// Ensure orderRepository implements repository.OrderRepository.
var _ repository.OrderRepository = (*orderRepository)(nil)
