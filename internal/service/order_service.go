package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// OrderService handles the order workflow.
type OrderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Get retrieves an order by id.
func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, ErrStoreFailure
	}
	return order, nil
}

// List returns all orders newest first with customer display fields.
func (s *OrderService) List(ctx context.Context) ([]*domain.OrderSummary, error) {
	summaries, err := s.orderRepo.ListSummaries(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, ErrStoreFailure
	}
	return summaries, nil
}

// UpdateStatus sets an order's status. Any known status is accepted
// from any current status; only unknown values are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("order_id", id).Str("status", string(status)).Msg("order status updated")
	return nil
}

// Delete removes the order row. Its items are left in place; product
// deletion policy still counts them afterwards.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrOrderNotFound
		}
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to delete order")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("order_id", id).Msg("order deleted")
	return nil
}

// Stats recomputes the order aggregates. Nothing is cached; every call
// reflects the rows at query time.
func (s *OrderService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute order stats")
		return nil, ErrStoreFailure
	}
	return stats, nil
}
