package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// productRepository implements repository.ProductRepository for SQLite.
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new SQLite product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, price, stock, minimum_stock, description, image_ref, deleted_at, created_by, created_at, updated_at`

// scanProduct scans a product row from either *sql.Row or *sql.Rows.
func scanProduct(scan func(dest ...interface{}) error) (*domain.Product, error) {
	product := &domain.Product{}
	var imageRef, deletedAt sql.NullString
	var createdBy sql.NullInt64
	var createdAt, updatedAt string

	err := scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.MinimumStock,
		&product.Description,
		&imageRef,
		&deletedAt,
		&createdBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageRef.Valid {
		product.ImageRef = imageRef.String
	}
	if deletedAt.Valid {
		if t, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
			product.DeletedAt = &t
		}
	}
	if createdBy.Valid {
		product.CreatedBy = createdBy.Int64
	}
	product.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	product.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return product, nil
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, category, price, stock, minimum_stock, description, image_ref, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.MinimumStock,
		product.Description,
		nullableString(product.ImageRef),
		nullableID(product.CreatedBy),
		product.CreatedAt.Format(time.RFC3339),
		product.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	product.ID = id

	return nil
}

// GetByID retrieves a product by ID, including soft-deleted rows so that
// order history remains joinable.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

// Update updates an existing product.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = ?, category = ?, price = ?, stock = ?, minimum_stock = ?,
		    description = ?, image_ref = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.MinimumStock,
		product.Description,
		nullableString(product.ImageRef),
		product.UpdatedAt.Format(time.RFC3339),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a product deleted, leaving all other columns intact.
func (r *productRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET deleted_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// HardDelete removes the product row permanently.
func (r *productRepository) HardDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// filterClause builds the WHERE tail and arguments for a product filter.
// Soft-deleted rows are always excluded from listings.
func filterClause(filter repository.ProductFilter) (string, []interface{}) {
	clause := ` WHERE deleted_at IS NULL`
	var args []interface{}

	if filter.Search != "" {
		clause += ` AND (name LIKE ? OR description LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		clause += ` AND category = ?`
		args = append(args, filter.Category)
	}

	return clause, args
}

// List returns active products matching the filter, newest first.
func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	clause, args := filterClause(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	queryArgs := append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return &repository.ListResult[domain.Product]{
		Items:  products,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Categories returns the distinct categories of active products.
func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE deleted_at IS NULL ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Totals returns whole-catalog inventory aggregates. The low/out buckets
// follow the same classification as domain.ClassifyStock.
func (r *productRepository) Totals(ctx context.Context) (*repository.InventoryTotals, error) {
	totals := &repository.InventoryTotals{}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(price * stock), 0),
			COALESCE(SUM(CASE WHEN stock > 0 AND stock <= minimum_stock THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN stock = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(stock), 0)
		FROM products
		WHERE deleted_at IS NULL
	`

	err := r.db.QueryRowContext(ctx, query).Scan(
		&totals.TotalProducts,
		&totals.TotalValue,
		&totals.LowStockCount,
		&totals.OutOfStock,
		&totals.AverageStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute inventory totals: %w", err)
	}

	return totals, nil
}

// CategoryStats returns per-category aggregates ordered by value.
func (r *productRepository) CategoryStats(ctx context.Context) ([]repository.CategoryStat, error) {
	query := `
		SELECT category, COUNT(*), COALESCE(SUM(stock), 0), COALESCE(SUM(price * stock), 0), COALESCE(AVG(stock), 0)
		FROM products
		WHERE deleted_at IS NULL
		GROUP BY category
		ORDER BY SUM(price * stock) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category stats: %w", err)
	}
	defer rows.Close()

	var stats []repository.CategoryStat
	for rows.Next() {
		var stat repository.CategoryStat
		err := rows.Scan(&stat.Category, &stat.ProductCount, &stat.TotalStock, &stat.TotalValue, &stat.AverageStock)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category stats: %w", err)
	}

	return stats, nil
}

// ListLowStock returns active products at or below their threshold.
func (r *productRepository) ListLowStock(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND stock <= minimum_stock
		ORDER BY stock ASC, name ASC
		LIMIT ?`

	return r.queryProducts(ctx, query, limit)
}

// ListTopValue returns active products by price*stock, highest first.
func (r *productRepository) ListTopValue(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY price * stock DESC
		LIMIT ?`

	return r.queryProducts(ctx, query, limit)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// nullableID maps a zero ID to NULL.
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// Ensure productRepository implements repository.ProductRepository.
var _ repository.ProductRepository = (*productRepository)(nil)
