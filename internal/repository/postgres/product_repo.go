package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// productRepository implements repository.ProductRepository for PostgreSQL.
type productRepository struct {
	db *DB
}

// NewProductRepository creates a new PostgreSQL product repository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, price, stock, minimum_stock, description, image_ref, deleted_at, created_by, created_at, updated_at`

func scanProduct(scan func(dest ...any) error) (*domain.Product, error) {
	product := &domain.Product{}
	var imageRef sql.NullString
	var deletedAt sql.NullTime
	var createdBy sql.NullInt64

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
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageRef.Valid {
		product.ImageRef = imageRef.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		product.DeletedAt = &t
	}
	if createdBy.Valid {
		product.CreatedBy = createdBy.Int64
	}
	return product, nil
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, category, price, stock, minimum_stock, description, image_ref, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, 0), $9, $10)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.MinimumStock,
		product.Description,
		product.ImageRef,
		product.CreatedBy,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID, including soft-deleted rows.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, id).Scan)
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
		SET name = $1, category = $2, price = $3, stock = $4, minimum_stock = $5,
		    description = $6, image_ref = NULLIF($7, ''), updated_at = $8
		WHERE id = $9
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.MinimumStock,
		product.Description,
		product.ImageRef,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete marks a product deleted, leaving all other columns intact.
func (r *productRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE products SET deleted_at = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// HardDelete removes the product row permanently.
func (r *productRepository) HardDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// filterClause builds the WHERE tail and arguments for a product filter.
func filterClause(filter repository.ProductFilter) (string, []any) {
	clause := ` WHERE deleted_at IS NULL`
	var args []any

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		clause += fmt.Sprintf(` AND (name LIKE $%d OR description LIKE $%d)`, len(args), len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clause += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	return clause, args
}

// List returns active products matching the filter, newest first.
func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	clause, args := filterClause(filter)

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	queryArgs := append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		`SELECT `+productColumns+` FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2,
	)

	rows, err := r.db.Pool.Query(ctx, query, queryArgs...)
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
	rows, err := r.db.Pool.Query(ctx,
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

// Totals returns whole-catalog inventory aggregates.
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

	err := r.db.Pool.QueryRow(ctx, query).Scan(
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

	rows, err := r.db.Pool.Query(ctx, query)
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
		LIMIT $1`

	return r.queryProducts(ctx, query, limit)
}

// ListTopValue returns active products by price*stock, highest first.
func (r *productRepository) ListTopValue(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY price * stock DESC
		LIMIT $1`

	return r.queryProducts(ctx, query, limit)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
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

// Ensure productRepository implements repository.ProductRepository.
var _ repository.ProductRepository = (*productRepository)(nil)
