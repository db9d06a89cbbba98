package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
)

func newReportFixture(t *testing.T) (*ReportService, *MockProductRepository) {
	t.Helper()

	products := NewMockProductRepository()
	svc := NewReportService(products, zerolog.Nop())

	ctx := context.Background()
	seed := []*domain.Product{
		{Name: "Cable", Category: "Electronics", Price: 10, Stock: 0, MinimumStock: 5},
		{Name: "Charger", Category: "Electronics", Price: 20, Stock: 3, MinimumStock: 5},
		{Name: "Desk", Category: "Furniture", Price: 100, Stock: 12, MinimumStock: 2},
		{Name: "Retired", Category: "Furniture", Price: 999, Stock: 99, MinimumStock: 1},
	}
	for _, p := range seed {
		if err := products.Create(ctx, p); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	if err := products.SoftDelete(ctx, seed[3].ID, time.Now()); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	return svc, products
}

func TestReportService_Totals(t *testing.T) {
	svc, _ := newReportFixture(t)

	totals, err := svc.Totals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if totals.TotalProducts != 3 {
		t.Errorf("expected 3 products, got %d", totals.TotalProducts)
	}
	if totals.TotalValue != 1260 {
		t.Errorf("expected inventory value 1260, got %v", totals.TotalValue)
	}
	if totals.OutOfStock != 1 {
		t.Errorf("expected 1 out-of-stock product, got %d", totals.OutOfStock)
	}
	if totals.LowStockCount != 1 {
		t.Errorf("expected 1 low-stock product, got %d", totals.LowStockCount)
	}
	if totals.AverageStock != 5 {
		t.Errorf("expected average stock 5, got %v", totals.AverageStock)
	}
}

func TestReportService_CategoryStats(t *testing.T) {
	svc, _ := newReportFixture(t)

	stats, err := svc.CategoryStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(stats))
	}

	if stats[0].Category != "Furniture" {
		t.Errorf("expected Furniture first by value, got %q", stats[0].Category)
	}
	if stats[0].ProductCount != 1 || stats[0].TotalValue != 1200 {
		t.Errorf("unexpected Furniture stats: %+v", stats[0])
	}
	if stats[1].Category != "Electronics" {
		t.Errorf("expected Electronics second, got %q", stats[1].Category)
	}
	if stats[1].ProductCount != 2 || stats[1].TotalStock != 3 || stats[1].TotalValue != 60 {
		t.Errorf("unexpected Electronics stats: %+v", stats[1])
	}
	if stats[1].AverageStock != 1.5 {
		t.Errorf("expected Electronics average stock 1.5, got %v", stats[1].AverageStock)
	}
}

func TestReportService_LowStock(t *testing.T) {
	svc, _ := newReportFixture(t)

	// Out-of-stock products belong to the totals, not the low-stock list.
	products, err := svc.LowStock(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 low-stock product, got %d", len(products))
	}
	if products[0].Name != "Charger" {
		t.Errorf("expected Charger, got %q", products[0].Name)
	}
}

func TestReportService_TopValue(t *testing.T) {
	svc, _ := newReportFixture(t)

	products, err := svc.TopValue(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Desk" || products[1].Name != "Charger" {
		t.Errorf("unexpected order: %q, %q", products[0].Name, products[1].Name)
	}
}

func TestReportService_Report(t *testing.T) {
	svc, _ := newReportFixture(t)

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Totals == nil || report.Totals.TotalProducts != 3 {
		t.Errorf("unexpected totals: %+v", report.Totals)
	}
	if len(report.Categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(report.Categories))
	}
	if len(report.LowStock) != 1 {
		t.Errorf("expected 1 low-stock product, got %d", len(report.LowStock))
	}
	if len(report.TopValue) != 3 {
		t.Errorf("expected 3 top-value products, got %d", len(report.TopValue))
	}
}
