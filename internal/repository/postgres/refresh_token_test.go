package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/pkg/database"
)

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func tokenColumns() []string {
	return []string{"id", "user_id", "admin_id", "token_hash", "expires_at", "revoked_at", "created_at"}
}

func TestRefreshTokenRepository_Create_UserToken(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "user-1"
	tok := &domain.RefreshToken{
		ID:        "tok-1",
		UserID:    userID,
		TokenHash: "hash-abc",
		ExpiresAt: now.Add(30 * 24 * time.Hour),
		CreatedAt: now,
	}

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, &userID, (*string)(nil), tok.TokenHash, tok.ExpiresAt, tok.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tok)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_ListActive_UserKind(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "user-1"

	rows := pgxmock.NewRows(tokenColumns()).
		AddRow("tok-2", &userID, (*string)(nil), "hash-2", now.Add(time.Hour), (*time.Time)(nil), now).
		AddRow("tok-1", &userID, (*string)(nil), "hash-1", now.Add(time.Hour), (*time.Time)(nil), now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, user_id, admin_id, token_hash, expires_at, revoked_at, created_at").
		WithArgs(50).
		WillReturnRows(rows)

	tokens, err := repo.ListActive(context.Background(), domain.PrincipalUser, 50)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "tok-2", tokens[0].ID)
	assert.Equal(t, "user-1", tokens[0].UserID)
	assert.Equal(t, domain.PrincipalUser, tokens[0].Kind())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_ListActive_AdminKind(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	adminID := "admin-1"

	rows := pgxmock.NewRows(tokenColumns()).
		AddRow("tok-9", (*string)(nil), &adminID, "hash-9", now.Add(time.Hour), (*time.Time)(nil), now)

	mock.ExpectQuery("SELECT id, user_id, admin_id, token_hash, expires_at, revoked_at, created_at").
		WithArgs(50).
		WillReturnRows(rows)

	tokens, err := repo.ListActive(context.Background(), domain.PrincipalAdmin, 50)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "admin-1", tokens[0].AdminID)
	assert.Equal(t, domain.PrincipalAdmin, tokens[0].Kind())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_Wins(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	revoked, err := repo.Revoke(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_AlreadyRevoked(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	// The revoked_at IS NULL precondition means a second revocation matches
	// no rows. The losing caller of a concurrent redeem sees false.
	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	revoked, err := repo.Revoke(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeAllForPrincipal(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "admin-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeAllForPrincipal(context.Background(), "admin-1", domain.PrincipalAdmin)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
