package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/pkg/database"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL. Tokens are only ever soft-deleted: revocation stamps
// revoked_at, rows stay for audit.
type RefreshTokenRepository struct {
	pool database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token
// repository.
func NewRefreshTokenRepository(pool database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

const listActiveQuery = `
	SELECT id, user_id, admin_id, token_hash, expires_at, revoked_at, created_at
	FROM refresh_tokens
	WHERE %s IS NOT NULL AND revoked_at IS NULL AND expires_at > NOW()
	ORDER BY created_at DESC
	LIMIT $1`

// Create stores a new refresh token hash bound to one principal.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, admin_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		nullable(t.UserID),
		nullable(t.AdminID),
		t.TokenHash,
		t.ExpiresAt,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// ListActive returns the newest active tokens of the given kind, bounded by
// limit. The caller compares each candidate's hash against the presented raw
// token; there is no index lookup because hashes are salted.
func (r *RefreshTokenRepository) ListActive(ctx context.Context, kind domain.PrincipalKind, limit int) ([]domain.RefreshToken, error) {
	column := "user_id"
	if kind == domain.PrincipalAdmin {
		column = "admin_id"
	}
	query := fmt.Sprintf(listActiveQuery, column)

	ctx, end := database.TraceQuery(ctx, "ListActiveRefreshTokens", query)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list active refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		var (
			t       domain.RefreshToken
			userID  *string
			adminID *string
		)
		if err := rows.Scan(&t.ID, &userID, &adminID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt); err != nil {
			end(err)
			return nil, fmt.Errorf("scan refresh token: %w", err)
		}
		if userID != nil {
			t.UserID = *userID
		}
		if adminID != nil {
			t.AdminID = *adminID
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate refresh tokens: %w", err)
	}

	end(nil)
	return tokens, nil
}

// Revoke marks the token revoked if it is still active. The revoked_at
// precondition makes concurrent redemptions of the same token race safely:
// exactly one caller observes rowsAffected == 1.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE id = $2 AND revoked_at IS NULL`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// RevokeAllForPrincipal revokes every active token owned by the principal.
func (r *RefreshTokenRepository) RevokeAllForPrincipal(ctx context.Context, principalID string, kind domain.PrincipalKind) error {
	column := "user_id"
	if kind == domain.PrincipalAdmin {
		column = "admin_id"
	}
	query := fmt.Sprintf(`
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE %s = $2 AND revoked_at IS NULL`, column)

	if _, err := r.pool.Exec(ctx, query, time.Now().UTC(), principalID); err != nil {
		return fmt.Errorf("revoke refresh tokens for principal: %w", err)
	}

	return nil
}

// nullable maps an empty string to a SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
