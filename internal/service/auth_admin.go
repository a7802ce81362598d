package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// Bootstrap operator credentials, available only while bootstrap login is
// enabled (development setups with an empty admin_users table).
const (
	bootstrapUsername = "admin"
	bootstrapPassword = "admin2346"
	bootstrapRole     = "superadmin"
)

// adminResolver resolves panel operators by username or email.
type adminResolver struct {
	repo repository.AdminRepository
}

func (r adminResolver) Resolve(ctx context.Context, identifier string) (*Credential, error) {
	admin, err := r.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return &Credential{
		PrincipalID:  admin.ID,
		PasswordHash: admin.PasswordHash,
		Active:       admin.Active,
	}, nil
}

// bootstrapResolver backs the built-in operator credentials. It runs after
// the repository resolver, so it only fires when no stored admin matches the
// identifier. A persistent admin row is provisioned on the first verified
// login so refresh tokens and audit trails reference a real principal; a
// wrong password must not leave a row behind.
type bootstrapResolver struct {
	repo   repository.AdminRepository
	hash   string
	logger *slog.Logger
}

func newBootstrapResolver(repo repository.AdminRepository, logger *slog.Logger) *bootstrapResolver {
	hash, err := auth.HashPassword(bootstrapPassword)
	if err != nil {
		// Leaves the hash empty so verification never succeeds.
		logger.Error("failed to hash bootstrap credential", slog.String("error", err.Error()))
	}

	return &bootstrapResolver{
		repo:   repo,
		hash:   hash,
		logger: logger,
	}
}

func (r *bootstrapResolver) Resolve(ctx context.Context, identifier string) (*Credential, error) {
	if identifier != bootstrapUsername || r.hash == "" {
		return nil, apperrors.ErrNotFound
	}

	return &Credential{
		PasswordHash: r.hash,
		Active:       true,
		provision:    r.provision,
	}, nil
}

func (r *bootstrapResolver) provision(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	admin := &domain.AdminUser{
		ID:           uuid.New().String(),
		Username:     bootstrapUsername,
		PasswordHash: r.hash,
		Role:         bootstrapRole,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.repo.Create(ctx, admin); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			return "", err
		}
		// Provisioned by a concurrent login.
		admin, err = r.repo.GetByIdentifier(ctx, bootstrapUsername)
		if err != nil {
			return "", err
		}
	} else {
		r.logger.InfoContext(ctx, "bootstrap admin provisioned",
			slog.String("admin_id", admin.ID),
		)
	}

	return admin.ID, nil
}

// NewAdminSessionManager builds the session manager for panel operators. The
// resolver chain tries stored admins first and falls back to the bootstrap
// credentials when enabled. Admins are re-read from the store on every
// authenticated call so deactivation takes effect immediately.
func NewAdminSessionManager(
	admins repository.AdminRepository,
	tokens repository.RefreshTokenRepository,
	codec *auth.TokenCodec,
	refreshTTL time.Duration,
	enableBootstrap bool,
	logger *slog.Logger,
) *SessionManager {
	resolvers := []CredentialResolver{adminResolver{repo: admins}}
	if enableBootstrap {
		resolvers = append(resolvers, newBootstrapResolver(admins, logger))
	}

	checkActive := func(ctx context.Context, principalID string) error {
		admin, err := admins.GetByID(ctx, principalID)
		if err != nil {
			return err
		}
		if !admin.Active {
			return apperrors.Unauthorized("account is deactivated")
		}
		return nil
	}

	return NewSessionManager(
		domain.PrincipalAdmin,
		resolvers,
		tokens,
		codec,
		refreshTTL,
		checkActive,
		logger,
	)
}
