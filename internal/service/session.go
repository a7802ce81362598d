package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// redeemScanLimit bounds how many active refresh token rows a single
// redemption attempt will bcrypt-compare against.
const redeemScanLimit = 50

// Credential is a resolved principal ready for password verification.
type Credential struct {
	PrincipalID  string
	PasswordHash string
	Active       bool

	// provision materializes the principal's store record. It runs only
	// after the password has been verified, and its result replaces
	// PrincipalID. Nil for principals that already exist.
	provision func(ctx context.Context) (string, error)
}

// CredentialResolver resolves a login identifier to a credential. Resolvers
// are consulted in order; a NotFound error moves on to the next one.
type CredentialResolver interface {
	Resolve(ctx context.Context, identifier string) (*Credential, error)
}

// ActiveChecker re-reads the principal's store record and fails when the
// principal may no longer authenticate.
type ActiveChecker func(ctx context.Context, principalID string) error

// SessionManager implements the session lifecycle for one principal kind:
// login, refresh rotation, per-request authentication, and logout. User and
// admin sessions get separate managers so a token from one realm can never
// cross into the other.
type SessionManager struct {
	kind        domain.PrincipalKind
	resolvers   []CredentialResolver
	tokenRepo   repository.RefreshTokenRepository
	codec       *auth.TokenCodec
	refreshTTL  time.Duration
	checkActive ActiveChecker
	logger      *slog.Logger
}

// NewSessionManager creates a session manager. checkActive may be nil for
// principal kinds that do not require a store round-trip on every request.
func NewSessionManager(
	kind domain.PrincipalKind,
	resolvers []CredentialResolver,
	tokenRepo repository.RefreshTokenRepository,
	codec *auth.TokenCodec,
	refreshTTL time.Duration,
	checkActive ActiveChecker,
	logger *slog.Logger,
) *SessionManager {
	return &SessionManager{
		kind:        kind,
		resolvers:   resolvers,
		tokenRepo:   tokenRepo,
		codec:       codec,
		refreshTTL:  refreshTTL,
		checkActive: checkActive,
		logger:      logger,
	}
}

// Kind returns the principal kind this manager serves.
func (s *SessionManager) Kind() domain.PrincipalKind {
	return s.kind
}

// AccessTTL returns the access token lifetime, for cookie max-age.
func (s *SessionManager) AccessTTL() time.Duration {
	return s.codec.AccessTTL()
}

// RefreshTTL returns the refresh token lifetime, for cookie max-age.
func (s *SessionManager) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Login verifies the identifier/password pair and issues a fresh token pair.
// Every failure mode surfaces as the same unauthorized error so responses do
// not reveal whether the account exists, is deactivated, or had a wrong
// password.
func (s *SessionManager) Login(ctx context.Context, identifier, password string) (string, *domain.TokenPair, error) {
	if identifier == "" || password == "" {
		return "", nil, apperrors.InvalidInput("identifier and password are required")
	}

	var cred *Credential
	for _, resolver := range s.resolvers {
		c, err := resolver.Resolve(ctx, identifier)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("resolve credentials: %w", err)
		}
		cred = c
		break
	}

	if cred == nil {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}
	if !cred.Active {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}
	if !auth.VerifyPassword(password, cred.PasswordHash) {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	principalID := cred.PrincipalID
	if cred.provision != nil {
		id, err := cred.provision(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("provision principal: %w", err)
		}
		principalID = id
	}

	pair, err := s.issuePair(ctx, principalID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token pair: %w", err)
	}

	s.logger.InfoContext(ctx, "session started",
		slog.String("principal_id", principalID),
		slog.String("kind", string(s.kind)),
	)

	return principalID, pair, nil
}

// Refresh redeems a raw refresh token, rotating it: the matched row is
// revoked before a new pair is issued. Losing a concurrent redemption race,
// presenting an already-rotated token, or failing the active re-check all
// terminate the session with the same unauthorized error.
func (s *SessionManager) Refresh(ctx context.Context, rawToken string) (string, *domain.TokenPair, error) {
	if rawToken == "" {
		return "", nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	row, err := s.findActiveToken(ctx, rawToken)
	if err != nil {
		return "", nil, err
	}
	if row == nil {
		return "", nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	won, err := s.tokenRepo.Revoke(ctx, row.ID)
	if err != nil {
		return "", nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !won {
		// A concurrent redemption of the same token got there first.
		return "", nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	principalID := row.PrincipalID()

	if s.checkActive != nil {
		if err := s.checkActive(ctx, principalID); err != nil {
			return "", nil, apperrors.Unauthorized("invalid or expired refresh token")
		}
	}

	pair, err := s.issuePair(ctx, principalID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token pair: %w", err)
	}

	s.logger.InfoContext(ctx, "session refreshed",
		slog.String("principal_id", principalID),
		slog.String("kind", string(s.kind)),
	)

	return principalID, pair, nil
}

// Authenticate verifies an access token for this manager's principal kind.
// Admin managers additionally re-read the store and reject deactivated
// accounts even while their tokens are otherwise valid.
func (s *SessionManager) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	if claims.Kind != s.kind {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	if s.checkActive != nil {
		if err := s.checkActive(ctx, claims.Subject); err != nil {
			return nil, apperrors.Unauthorized("invalid or expired token")
		}
	}

	return claims, nil
}

// Logout revokes the presented refresh token. It is idempotent: an absent or
// already-revoked token is not an error, and the access token simply rides
// out its remaining validity.
func (s *SessionManager) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	row, err := s.findActiveToken(ctx, rawToken)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}

	if _, err := s.tokenRepo.Revoke(ctx, row.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "session ended",
		slog.String("principal_id", row.PrincipalID()),
		slog.String("kind", string(s.kind)),
	)

	return nil
}

// RevokeAll revokes every active refresh token for the principal, ending all
// of their sessions.
func (s *SessionManager) RevokeAll(ctx context.Context, principalID string) error {
	if err := s.tokenRepo.RevokeAllForPrincipal(ctx, principalID, s.kind); err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return nil
}

// findActiveToken scans the newest active rows for this kind and returns the
// one whose hash matches the raw token, or nil when none does.
func (s *SessionManager) findActiveToken(ctx context.Context, rawToken string) (*domain.RefreshToken, error) {
	rows, err := s.tokenRepo.ListActive(ctx, s.kind, redeemScanLimit)
	if err != nil {
		return nil, fmt.Errorf("list active refresh tokens: %w", err)
	}

	for i := range rows {
		if auth.VerifyRefreshToken(rawToken, rows[i].TokenHash) {
			return &rows[i], nil
		}
	}

	return nil, nil
}

// issuePair signs a new access token and stores the bcrypt hash of a fresh
// refresh token. The raw refresh value leaves this function exactly once.
func (s *SessionManager) issuePair(ctx context.Context, principalID string) (*domain.TokenPair, error) {
	accessToken, err := s.codec.Sign(principalID, s.kind)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	rawRefresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	hash, err := auth.HashRefreshToken(rawRefresh)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	now := time.Now().UTC()
	row := &domain.RefreshToken{
		ID:        uuid.New().String(),
		TokenHash: hash,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	switch s.kind {
	case domain.PrincipalAdmin:
		row.AdminID = principalID
	default:
		row.UserID = principalID
	}

	if err := s.tokenRepo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
	}, nil
}
