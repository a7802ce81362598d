package domain

import "time"

// AdminUser represents an administrative panel operator.
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Permissions maps named capabilities to whether the admin holds them.
// Capabilities are derived from the role rather than stored per admin.
type Permissions map[string]bool

// rolePermissions defines the capability set granted by each admin role.
var rolePermissions = map[string]Permissions{
	"superadmin": {
		"orders":   true,
		"products": true,
		"content":  true,
		"admins":   true,
	},
	"admin": {
		"orders":   true,
		"products": true,
		"content":  true,
	},
	"support": {
		"orders": true,
	},
}

// PermissionsFor returns the capability set for the given role. Unknown roles
// hold no capabilities.
func PermissionsFor(role string) Permissions {
	perms, ok := rolePermissions[role]
	if !ok {
		return Permissions{}
	}
	// Copy so callers cannot mutate the shared map.
	out := make(Permissions, len(perms))
	for k, v := range perms {
		out[k] = v
	}
	return out
}

// HasPermission reports whether the admin's role grants the named capability.
func (a *AdminUser) HasPermission(capability string) bool {
	return PermissionsFor(a.Role)[capability]
}
