package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// AdminService implements panel operator management and the admin-side view
// of storefront customers.
type AdminService struct {
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	logger    *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// CreateAdminInput holds the parameters for creating a panel operator.
type CreateAdminInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// CreateAdmin provisions a new panel operator.
func (s *AdminService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.AdminUser, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if len(domain.PermissionsFor(input.Role)) == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown admin role %q", input.Role))
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.AdminUser{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin created",
		slog.String("admin_id", admin.ID),
		slog.String("username", admin.Username),
		slog.String("role", admin.Role),
	)

	return admin, nil
}

// GetAdmin retrieves a panel operator by ID.
func (s *AdminService) GetAdmin(ctx context.Context, id string) (*domain.AdminUser, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return admin, nil
}

// ListAdmins returns all panel operators.
func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// SetAdminActive flips an operator's active flag. Deactivation also revokes
// the operator's refresh tokens; the per-request store check shuts out their
// live access tokens immediately.
func (s *AdminService) SetAdminActive(ctx context.Context, actorID, adminID string, active bool) error {
	if !active && actorID == adminID {
		return apperrors.InvalidInput("cannot deactivate your own account")
	}

	if err := s.adminRepo.SetActive(ctx, adminID, active); err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}

	if !active {
		if err := s.tokenRepo.RevokeAllForPrincipal(ctx, adminID, domain.PrincipalAdmin); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke refresh tokens for deactivated admin",
				slog.String("admin_id", adminID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "admin active flag changed",
		slog.String("admin_id", adminID),
		slog.Bool("active", active),
		slog.String("changed_by", actorID),
	)

	return nil
}

// ListUsers returns storefront customers for the panel, newest first.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a storefront customer for the panel.
func (s *AdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SetUserActive flips a customer's active flag. Deactivation revokes the
// customer's refresh tokens so their sessions end once the short-lived
// access token expires.
func (s *AdminService) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("set user active: %w", err)
	}

	if !active {
		if err := s.tokenRepo.RevokeAllForPrincipal(ctx, userID, domain.PrincipalUser); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke refresh tokens for deactivated user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user active flag changed",
		slog.String("user_id", userID),
		slog.Bool("active", active),
	)

	return nil
}
