package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trendzone/storefront/internal/domain"
)

// Claims represents the JWT claims for an access token. Kind tags the token
// with the principal realm so a user token can never authorize an admin
// resource.
type Claims struct {
	Kind domain.PrincipalKind `json:"typ"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access tokens. Tokens are self-contained so
// most requests never touch the database.
type TokenCodec struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokenCodec creates a codec with the given signing secret and access
// token lifetime.
func NewTokenCodec(secret string, accessTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// Sign produces a signed access token for the given principal.
func (c *TokenCodec) Sign(principalID string, kind domain.PrincipalKind) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
			Issuer:    "storefront",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates an access token, returning its claims. It
// rejects tokens with a bad signature, an unexpected signing method, an
// elapsed expiry, or an unknown principal kind.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if !claims.Kind.Valid() {
		return nil, fmt.Errorf("unknown principal kind %q", claims.Kind)
	}

	return claims, nil
}
