package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendzone/storefront/internal/domain"
)

func TestTokenCodec_SignAndVerify(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute)

	token, err := codec.Sign("user-123", domain.PrincipalUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, domain.PrincipalUser, claims.Kind)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenCodec_AdminKindPreserved(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute)

	token, err := codec.Sign("admin-1", domain.PrincipalAdmin)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalAdmin, claims.Kind)
}

func TestTokenCodec_WrongSecretRejected(t *testing.T) {
	codec := NewTokenCodec("secret-a", 15*time.Minute)
	other := NewTokenCodec("secret-b", 15*time.Minute)

	token, err := codec.Sign("user-123", domain.PrincipalUser)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenCodec_ExpiredTokenRejected(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Sign("user-123", domain.PrincipalUser)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.Error(t, err)
}

func TestTokenCodec_GarbageRejected(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute)

	_, err := codec.Verify("not.a.jwt")
	assert.Error(t, err)

	_, err = codec.Verify("")
	assert.Error(t, err)
}

func TestTokenCodec_UnknownKindRejected(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute)

	token, err := codec.Sign("svc-1", domain.PrincipalKind("service"))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.Error(t, err)
}
