package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// CatalogService implements product catalog operations for the storefront
// and the admin panel.
type CatalogService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(productRepo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	ImageURL    string
	Category    string
	InStock     bool
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	ImageURL    *string
	Category    *string
	InStock     *bool
}

// ListProducts returns catalog products, optionally filtered by category.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by its ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.PriceCents < 0 {
		return nil, apperrors.InvalidInput("product price must not be negative")
	}
	if input.Currency == "" {
		return nil, apperrors.InvalidInput("currency is required")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    input.Currency,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		InStock:     input.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// UpdateProduct modifies a product's fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, apperrors.InvalidInput("product price must not be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Currency != nil {
		product.Currency = *input.Currency
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}
