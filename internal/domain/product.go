// Package domain contains the core business entities for the Meridian back-office.
package domain

import (
	"time"
)

// DefaultMinimumStock is applied when a product is created without an
// explicit replenishment threshold.
const DefaultMinimumStock = 5

// SuggestedCategories is the list offered by the product forms. It is a
// suggestion only; the category column accepts any non-empty string.
var SuggestedCategories = []string{
	"Electronics",
	"Furniture & Interior",
	"Clothing & Fashion",
	"Food & Beverage",
	"Books & Stationery",
	"Sports & Outdoor",
	"Health & Beauty",
	"Hobby & Entertainment",
	"Other",
}

// Product represents a catalog item with its inventory count.
type Product struct {
	// ID is the unique identifier for the product (auto-generated).
	ID int64 `json:"id"`

	// Name is the product name.
	Name string `json:"name"`

	// Category is a free-form classification string.
	Category string `json:"category"`

	// Price is the unit price. Invariant: Price >= 0.
	Price float64 `json:"price"`

	// Stock is the current quantity on hand. Invariant: Stock >= 0.
	Stock int `json:"stock"`

	// MinimumStock is the replenishment threshold. Invariant: >= 0.
	MinimumStock int `json:"minimum_stock"`

	// Description is an optional free-form description.
	Description string `json:"description"`

	// ImageRef is an opaque reference into the image store, empty when
	// the product has no image.
	ImageRef string `json:"image_ref,omitempty"`

	// DeletedAt is the soft-delete timestamp. A nil value means the
	// product is active; a non-nil value hides it from all listings
	// and reports while keeping it joinable from order history.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// CreatedBy is the ID of the user who created the product.
	CreatedBy int64 `json:"created_by"`

	// CreatedAt is the timestamp when the product was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the product was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// StockStatus classifies a product's inventory level.
type StockStatus string

const (
	// StockOut means the product is out of stock.
	StockOut StockStatus = "out"

	// StockLow means the stock is at or below the replenishment threshold.
	StockLow StockStatus = "low"

	// StockNormal means the stock is above the replenishment threshold.
	StockNormal StockStatus = "normal"
)

// ClassifyStock returns the display status for a (stock, minimum) pair.
// It is a pure function and the single source of truth wherever stock
// status is surfaced.
func ClassifyStock(stock, minimum int) StockStatus {
	switch {
	case stock == 0:
		return StockOut
	case stock <= minimum:
		return StockLow
	default:
		return StockNormal
	}
}

// StockStatus returns the product's current classification.
func (p *Product) StockStatus() StockStatus {
	return ClassifyStock(p.Stock, p.MinimumStock)
}

// DeleteMode records how a product deletion was carried out.
type DeleteMode string

const (
	// DeleteModeSoft means the row was retained with a delete timestamp
	// because order history references it.
	DeleteModeSoft DeleteMode = "soft"

	// DeleteModeHard means the row was removed permanently.
	DeleteModeHard DeleteMode = "hard"
)
