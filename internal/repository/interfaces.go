// Package repository defines data access interfaces for the Meridian
// back-office. These interfaces abstract database operations, allowing for
// different implementations (PostgreSQL, SQLite, in-memory for testing)
// while keeping the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByAccount retrieves a user by login handle.
	GetByAccount(ctx context.Context, account string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete hard-deletes a user by ID.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination, newest first.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByAccount checks if a user with the given handle exists.
	ExistsByAccount(ctx context.Context, account string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByAny checks whether any user holds the given account,
	// username or email. Used by admin user creation.
	ExistsByAny(ctx context.Context, account, username, email string) (bool, error)

	// TakenByOther checks whether the username or email is held by a
	// user other than exceptID. Used by profile updates.
	TakenByOther(ctx context.Context, username, email string, exceptID int64) (bool, error)
}

// =============================================================================
// Product Repository
// =============================================================================

// ProductFilter narrows a product listing. Search matches name or
// description as a substring; Category matches exactly. Both combine
// with AND semantics; empty fields are ignored.
type ProductFilter struct {
	Search   string
	Category string
}

// InventoryTotals holds the whole-catalog aggregates for reporting.
type InventoryTotals struct {
	TotalProducts int64
	TotalValue    float64
	LowStockCount int64
	OutOfStock    int64
	AverageStock  float64
}

// CategoryStat holds per-category inventory aggregates.
type CategoryStat struct {
	Category     string
	ProductCount int64
	TotalStock   int64
	TotalValue   float64
	AverageStock float64
}

// ProductRepository defines the interface for product data access.
// Listing and reporting methods exclude soft-deleted rows; GetByID does
// not, so order history stays joinable.
type ProductRepository interface {
	// Create creates a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID, including soft-deleted rows.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// Update updates an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// SoftDelete marks a product deleted at the given time, leaving all
	// other columns intact.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// HardDelete removes the product row permanently.
	HardDelete(ctx context.Context, id int64) error

	// List returns active products matching the filter, newest first.
	List(ctx context.Context, filter ProductFilter, opts ListOptions) (*ListResult[domain.Product], error)

	// Categories returns the distinct categories of active products.
	Categories(ctx context.Context) ([]string, error)

	// Totals returns whole-catalog inventory aggregates.
	Totals(ctx context.Context) (*InventoryTotals, error)

	// CategoryStats returns per-category aggregates ordered by value.
	CategoryStats(ctx context.Context) ([]CategoryStat, error)

	// ListLowStock returns active products at or below their threshold,
	// lowest stock first.
	ListLowStock(ctx context.Context, limit int) ([]*domain.Product, error)

	// ListTopValue returns active products by price*stock, highest first.
	ListTopValue(ctx context.Context, limit int) ([]*domain.Product, error)
}

// =============================================================================
// Order Repository
// =============================================================================

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListSummaries returns all orders joined with customer display
	// fields, newest first.
	ListSummaries(ctx context.Context) ([]*domain.OrderSummary, error)

	// UpdateStatus sets the status of an order and refreshes its
	// updated_at timestamp.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	// Delete hard-deletes the order row. Order items referencing it are
	// intentionally not cascaded.
	Delete(ctx context.Context, id int64) error

	// Stats recomputes the order aggregates.
	Stats(ctx context.Context) (*domain.OrderStats, error)

	// CountItemsByProduct counts order items referencing a product.
	// This count decides soft-versus-hard product deletion.
	CountItemsByProduct(ctx context.Context, productID int64) (int64, error)
}

// =============================================================================
// Auth Log Repository
// =============================================================================

// AuthLogRepository defines the interface for the append-only
// authentication audit trail.
type AuthLogRepository interface {
	// Append records an entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *domain.AuthLogEntry) error

	// ListRecent returns the newest entries for operator review.
	ListRecent(ctx context.Context, limit int) ([]*domain.AuthLogEntry, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}

// Repositories holds all repository instances.
type Repositories struct {
	User    UserRepository
	Product ProductRepository
	Order   OrderRepository
	AuthLog AuthLogRepository
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
