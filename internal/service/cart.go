package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// Cart limits.
const (
	maxQuantityPerItem = 99
	maxItemsPerCart    = 50
)

// saveRetries bounds how many times a cart mutation is retried when a
// concurrent save from another device bumps the version first.
const saveRetries = 3

// CartService implements the shopping cart on top of the Redis repository,
// using optimistic version guards so carts open on two devices do not
// clobber each other.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart. A user with no stored cart gets an empty one.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return emptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a product to the cart, or increments its quantity when it is
// already present.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for cart: %w", err)
	}
	if !product.InStock {
		return nil, apperrors.InvalidInput("product is out of stock")
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		idx := cart.FindItemIndex(productID)
		if idx >= 0 {
			newQty := cart.Items[idx].Quantity + quantity
			if newQty > maxQuantityPerItem {
				return apperrors.InvalidInput(fmt.Sprintf("quantity per item is limited to %d", maxQuantityPerItem))
			}
			cart.Items[idx].Quantity = newQty
			return nil
		}

		if len(cart.Items) >= maxItemsPerCart {
			return apperrors.InvalidInput(fmt.Sprintf("cart is limited to %d distinct items", maxItemsPerCart))
		}
		if quantity > maxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("quantity per item is limited to %d", maxQuantityPerItem))
		}

		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   quantity,
			ImageURL:   product.ImageURL,
		})
		if cart.Currency == "" {
			cart.Currency = product.Currency
		}
		return nil
	})
}

// UpdateQuantity sets the quantity of a cart item. Quantity zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > maxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity per item is limited to %d", maxQuantityPerItem))
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		idx := cart.FindItemIndex(productID)
		if idx < 0 {
			return apperrors.NotFound("cart item", productID)
		}

		if quantity == 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			return nil
		}

		cart.Items[idx].Quantity = quantity
		return nil
	})
}

// RemoveItem deletes a product from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		idx := cart.FindItemIndex(productID)
		if idx < 0 {
			return apperrors.NotFound("cart item", productID)
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return nil
	})
}

// Clear removes the user's cart entirely.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// mutate loads the cart, applies fn, and saves it under the optimistic
// version guard, retrying on concurrent modification.
func (s *CartService) mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	for attempt := 0; attempt <= saveRetries; attempt++ {
		cart, err := s.cartRepo.Get(ctx, userID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("get cart: %w", err)
			}
			cart = emptyCart(userID)
		}

		if err := fn(cart); err != nil {
			return nil, err
		}

		expected := cart.Version
		cart.Version++
		cart.UpdatedAt = time.Now().UTC()

		saved, err := s.cartRepo.SaveIfVersion(ctx, cart, expected)
		if err != nil {
			return nil, fmt.Errorf("save cart: %w", err)
		}
		if saved {
			return cart, nil
		}

		s.logger.DebugContext(ctx, "cart version conflict, retrying",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt+1),
		)
	}

	return nil, apperrors.Conflict("cart was modified concurrently, please retry")
}

func emptyCart(userID string) *domain.Cart {
	return &domain.Cart{
		UserID:    userID,
		Items:     []domain.CartItem{},
		Version:   0,
		UpdatedAt: time.Now().UTC(),
	}
}
