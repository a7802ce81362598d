package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken_EntropyAndUniqueness(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	// 48 random bytes encode to 64 base64url characters.
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestRefreshToken_HashVerifyRoundTrip(t *testing.T) {
	raw, err := NewRefreshToken()
	require.NoError(t, err)

	hash, err := HashRefreshToken(raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, hash)

	assert.True(t, VerifyRefreshToken(raw, hash))

	other, err := NewRefreshToken()
	require.NoError(t, err)
	assert.False(t, VerifyRefreshToken(other, hash))
}
