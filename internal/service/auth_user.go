package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
)

// userResolver resolves storefront customers by email.
type userResolver struct {
	repo repository.UserRepository
}

func (r userResolver) Resolve(ctx context.Context, identifier string) (*Credential, error) {
	user, err := r.repo.GetByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return &Credential{
		PrincipalID:  user.ID,
		PasswordHash: user.PasswordHash,
		Active:       user.Active,
	}, nil
}

// NewUserSessionManager builds the session manager for storefront customers.
// Users carry no per-request store check; deactivating a user revokes their
// refresh tokens instead, so their access token rides out its short validity.
func NewUserSessionManager(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *auth.TokenCodec,
	refreshTTL time.Duration,
	logger *slog.Logger,
) *SessionManager {
	return NewSessionManager(
		domain.PrincipalUser,
		[]CredentialResolver{userResolver{repo: users}},
		tokens,
		codec,
		refreshTTL,
		nil,
		logger,
	)
}
