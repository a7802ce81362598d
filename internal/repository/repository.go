package repository

import (
	"context"

	"github.com/trendzone/storefront/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users newest first, bounded by limit and offset.
	List(ctx context.Context, limit, offset int) ([]domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// SetActive flips the user's active flag.
	SetActive(ctx context.Context, id string, active bool) error
}

// AdminRepository defines the interface for admin user persistence operations.
type AdminRepository interface {
	// Create inserts a new admin user into the store.
	Create(ctx context.Context, admin *domain.AdminUser) error

	// GetByID retrieves an admin by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.AdminUser, error)

	// GetByIdentifier retrieves an admin by login identifier, matching either
	// username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.AdminUser, error)

	// List returns all admin users.
	List(ctx context.Context) ([]domain.AdminUser, error)

	// SetActive flips the admin's active flag.
	SetActive(ctx context.Context, id string, active bool) error
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Rows are soft-deleted only: revocation sets revoked_at, nothing is ever
// removed.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash bound to one principal.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// ListActive returns the most recently issued active (unrevoked,
	// unexpired) tokens for the given principal kind, newest first, bounded
	// by limit.
	ListActive(ctx context.Context, kind domain.PrincipalKind, limit int) ([]domain.RefreshToken, error)

	// Revoke marks the token revoked. It reports whether this call performed
	// the revocation; false means the row was already revoked or absent,
	// which lets concurrent redemptions of the same token race safely.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeAllForPrincipal revokes every active token owned by the
	// principal. Idempotent.
	RevokeAllForPrincipal(ctx context.Context, principalID string, kind domain.PrincipalKind) error
}

// OrderFilter narrows admin-side order listings.
type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts the order, its items, and the initial history row in a
	// single transaction.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUserID returns the user's orders, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Order, error)

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	// UpdateStatus atomically moves the order from fromStatus to toStatus and
	// appends one history row, in a single transaction. It fails if the
	// order's current status no longer matches fromStatus.
	UpdateStatus(ctx context.Context, orderID, fromStatus, toStatus, changedBy, note string) error

	// ListHistory returns the order's full audit trail, oldest first.
	ListHistory(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error)
}

// ProductRepository defines the interface for catalog persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products, optionally filtered by category.
	List(ctx context.Context, category string) ([]domain.Product, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error
}

// BannerRepository defines the interface for storefront content persistence.
type BannerRepository interface {
	// Create inserts a new banner.
	Create(ctx context.Context, banner *domain.Banner) error

	// ListActive returns active banners ordered by position.
	ListActive(ctx context.Context) ([]domain.Banner, error)

	// List returns all banners ordered by position.
	List(ctx context.Context) ([]domain.Banner, error)

	// Update modifies an existing banner.
	Update(ctx context.Context, banner *domain.Banner) error

	// Delete removes a banner.
	Delete(ctx context.Context, id string) error
}

// CartRepository defines the interface for cart persistence operations. The
// TTL is fixed at construction; every save refreshes it.
type CartRepository interface {
	// Get retrieves the user's cart. Returns ErrNotFound when absent.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save stores the cart, overwriting any prior value.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion stores the cart only if the stored version still matches
	// expectedVersion. It reports whether the save happened.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes the user's cart.
	Delete(ctx context.Context, userID string) error
}
