package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// DefaultReportLimit caps the low-stock and top-value product lists.
const DefaultReportLimit = 10

// ReportService produces the inventory dashboard figures. All
// aggregates skip soft-deleted products and are recomputed per call.
type ReportService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(productRepo repository.ProductRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "report").Logger(),
	}
}

// InventoryReport is the full dashboard payload.
type InventoryReport struct {
	Totals     *repository.InventoryTotals `json:"totals"`
	Categories []repository.CategoryStat   `json:"categories"`
	LowStock   []*domain.Product           `json:"low_stock"`
	TopValue   []*domain.Product           `json:"top_value"`
}

// Totals returns the whole-catalog aggregates.
func (s *ReportService) Totals(ctx context.Context) (*repository.InventoryTotals, error) {
	totals, err := s.productRepo.Totals(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute inventory totals")
		return nil, ErrStoreFailure
	}
	return totals, nil
}

// CategoryStats returns per-category aggregates ordered by value.
func (s *ReportService) CategoryStats(ctx context.Context) ([]repository.CategoryStat, error) {
	stats, err := s.productRepo.CategoryStats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute category stats")
		return nil, ErrStoreFailure
	}
	return stats, nil
}

// LowStock returns active products at or below their threshold, lowest
// stock first.
func (s *ReportService) LowStock(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultReportLimit
	}

	products, err := s.productRepo.ListLowStock(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list low-stock products")
		return nil, ErrStoreFailure
	}
	return products, nil
}

// TopValue returns active products by price*stock, highest first.
func (s *ReportService) TopValue(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultReportLimit
	}

	products, err := s.productRepo.ListTopValue(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list top-value products")
		return nil, ErrStoreFailure
	}
	return products, nil
}

// Report assembles the complete inventory report in one call.
func (s *ReportService) Report(ctx context.Context) (*InventoryReport, error) {
	totals, err := s.Totals(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.LowStock(ctx, DefaultReportLimit)
	if err != nil {
		return nil, err
	}

	topValue, err := s.TopValue(ctx, DefaultReportLimit)
	if err != nil {
		return nil, err
	}

	return &InventoryReport{
		Totals:     totals,
		Categories: categories,
		LowStock:   lowStock,
		TopValue:   topValue,
	}, nil
}
