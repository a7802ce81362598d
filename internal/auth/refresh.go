package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// refreshTokenBytes is the entropy of a raw refresh token. 48 bytes encodes
// to a 64-character base64url string.
const refreshTokenBytes = 48

// NewRefreshToken generates a high-entropy opaque refresh token value. The
// raw value is returned to the client exactly once; only its bcrypt hash is
// ever persisted.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashRefreshToken produces the one-way hash stored in place of the raw
// token. bcrypt's own salt makes two hashes of the same value differ, which
// is why redemption compares candidates instead of looking up by hash.
func HashRefreshToken(raw string) (string, error) {
	return HashPassword(raw)
}

// VerifyRefreshToken reports whether the raw token matches the stored hash.
func VerifyRefreshToken(raw, hash string) bool {
	return VerifyPassword(raw, hash)
}
