package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/imagestore"
	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// ProductPageSize is the fixed page size for product listings.
const ProductPageSize = 10

// ValidationProfile selects which price rule applies to product writes.
// The form surface historically accepted free items (price zero) while
// the JSON surface required a positive price; both rule sets are kept,
// named, under test.
type ValidationProfile int

const (
	// ProfileForm validates with price >= 0.
	ProfileForm ValidationProfile = iota

	// ProfileAPI validates with price > 0.
	ProfileAPI
)

// ProductService handles the product catalog lifecycle.
type ProductService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	images      imagestore.Store
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	images imagestore.Store,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		images:      images,
		metrics:     m,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// ImageUpload carries an optional image accompanying a product write.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// ProductInput contains the data for creating or updating a product.
type ProductInput struct {
	Name         string
	Category     string
	Price        float64
	Stock        int
	MinimumStock *int // nil applies the default threshold
	Description  string
	Image        *ImageUpload
}

// ListProductsInput contains filters and pagination for listings.
type ListProductsInput struct {
	Search   string
	Category string
	Page     int // 1-based; values below 1 are treated as 1
}

// ListProductsOutput contains one page of products.
type ListProductsOutput struct {
	Products   []*domain.Product
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// DeleteProductOutput reports how the deletion was carried out.
type DeleteProductOutput struct {
	Mode    domain.DeleteMode
	Message string
}

// =============================================================================
// Operations
// =============================================================================

// validate evaluates every rule independently and returns the full
// ordered list of violations.
func validateProduct(input ProductInput, profile ValidationProfile) []string {
	var messages []string

	if strings.TrimSpace(input.Name) == "" {
		messages = append(messages, "product name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		messages = append(messages, "category is required")
	}

	if profile == ProfileAPI {
		if input.Price <= 0 {
			messages = append(messages, "price must be greater than zero")
		}
	} else {
		if input.Price < 0 {
			messages = append(messages, "price must not be negative")
		}
	}

	if input.Stock < 0 {
		messages = append(messages, "stock must not be negative")
	}
	if input.MinimumStock != nil && *input.MinimumStock < 0 {
		messages = append(messages, "minimum stock must not be negative")
	}

	return messages
}

// Create validates and inserts a new product. No write happens on any
// violation; an image, if provided, is stored only after validation.
func (s *ProductService) Create(ctx context.Context, input ProductInput, profile ValidationProfile, createdBy int64) (*domain.Product, error) {
	if messages := validateProduct(input, profile); len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	minimum := domain.DefaultMinimumStock
	if input.MinimumStock != nil {
		minimum = *input.MinimumStock
	}

	var imageRef string
	if input.Image != nil {
		ref, err := s.images.Save(ctx, input.Image.Reader, input.Image.Size, input.Image.ContentType)
		if err != nil {
			return nil, err
		}
		imageRef = ref
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:         strings.TrimSpace(input.Name),
		Category:     strings.TrimSpace(input.Category),
		Price:        input.Price,
		Stock:        input.Stock,
		MinimumStock: minimum,
		Description:  input.Description,
		ImageRef:     imageRef,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if imageRef != "" {
			_ = s.images.Release(ctx, imageRef)
		}
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, ErrStoreFailure
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return product, nil
}

// Update validates and applies changes to a product. When a new image
// is supplied it is stored first and the old image is released only
// after the record update succeeds.
func (s *ProductService) Update(ctx context.Context, id int64, input ProductInput, profile ValidationProfile) (*domain.Product, error) {
	if messages := validateProduct(input, profile); len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to load product")
		return nil, ErrStoreFailure
	}

	oldImage := product.ImageRef
	if input.Image != nil {
		ref, err := s.images.Save(ctx, input.Image.Reader, input.Image.Size, input.Image.ContentType)
		if err != nil {
			return nil, err
		}
		product.ImageRef = ref
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Category = strings.TrimSpace(input.Category)
	product.Price = input.Price
	product.Stock = input.Stock
	if input.MinimumStock != nil {
		product.MinimumStock = *input.MinimumStock
	}
	product.Description = input.Description

	if err := s.productRepo.Update(ctx, product); err != nil {
		if input.Image != nil {
			_ = s.images.Release(ctx, product.ImageRef)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, ErrStoreFailure
	}

	if input.Image != nil && oldImage != "" {
		_ = s.images.Release(ctx, oldImage)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return product, nil
}

// Get retrieves a product by id, including soft-deleted rows so order
// history remains resolvable.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, ErrStoreFailure
	}
	return product, nil
}

// Delete removes a product. A product referenced by at least one order
// item is soft-deleted to keep history intact; an unreferenced product
// is removed outright and its image released. The reference count and
// the delete are two separate statements, so a concurrent first order
// between them still hard-deletes.
func (s *ProductService) Delete(ctx context.Context, id int64) (*DeleteProductOutput, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to load product")
		return nil, ErrStoreFailure
	}

	references, err := s.orderRepo.CountItemsByProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to count order references")
		return nil, ErrStoreFailure
	}

	if references > 0 {
		if err := s.productRepo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.ErrProductNotFound
			}
			s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to soft-delete product")
			return nil, ErrStoreFailure
		}

		s.metrics.ProductDeletes.WithLabelValues(string(domain.DeleteModeSoft)).Inc()
		s.logger.Info().Int64("product_id", id).Int64("references", references).Msg("product soft-deleted")
		return &DeleteProductOutput{
			Mode:    domain.DeleteModeSoft,
			Message: "product is referenced by order history and has been hidden instead of removed",
		}, nil
	}

	if err := s.productRepo.HardDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return nil, ErrStoreFailure
	}

	if product.ImageRef != "" {
		if err := s.images.Release(ctx, product.ImageRef); err != nil {
			s.logger.Error().Err(err).Str("ref", product.ImageRef).Msg("failed to release product image")
		}
	}

	s.metrics.ProductDeletes.WithLabelValues(string(domain.DeleteModeHard)).Inc()
	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return &DeleteProductOutput{
		Mode:    domain.DeleteModeHard,
		Message: "product deleted",
	}, nil
}

// List returns one page of active products. Pages are 1-based with a
// fixed size of 10; a page past the end yields an empty result rather
// than an error.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	filter := repository.ProductFilter{
		Search:   strings.TrimSpace(input.Search),
		Category: strings.TrimSpace(input.Category),
	}
	opts := repository.ListOptions{
		Offset: (page - 1) * ProductPageSize,
		Limit:  ProductPageSize,
	}

	result, err := s.productRepo.List(ctx, filter, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, ErrStoreFailure
	}

	totalPages := int((result.Total + ProductPageSize - 1) / ProductPageSize)

	return &ListProductsOutput{
		Products:   result.Items,
		Total:      result.Total,
		Page:       page,
		PageSize:   ProductPageSize,
		TotalPages: totalPages,
	}, nil
}

// Categories returns the distinct categories of active products for
// filter dropdowns.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, ErrStoreFailure
	}
	return categories, nil
}

// Classify returns the stock status for a (stock, minimum) pair.
func (s *ProductService) Classify(stock, minimum int) domain.StockStatus {
	return domain.ClassifyStock(stock, minimum)
}
