package domain

import "time"

// PrincipalKind distinguishes the two independent authentication realms.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

// Valid reports whether the kind is one of the known principal kinds.
func (k PrincipalKind) Valid() bool {
	return k == PrincipalUser || k == PrincipalAdmin
}

// RefreshToken represents a stored refresh token. Exactly one of UserID and
// AdminID is set. The raw token value is never persisted; only TokenHash is.
type RefreshToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	AdminID   string     `json:"admin_id,omitempty"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// PrincipalID returns the owning principal's id regardless of kind.
func (t *RefreshToken) PrincipalID() string {
	if t.UserID != "" {
		return t.UserID
	}
	return t.AdminID
}

// Kind returns the owning principal's kind.
func (t *RefreshToken) Kind() PrincipalKind {
	if t.UserID != "" {
		return PrincipalUser
	}
	return PrincipalAdmin
}

// TokenPair holds an access and refresh token pair as returned to the client.
// The refresh token here is the raw value; it exists in cleartext only in
// this struct and in the client's cookie.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
