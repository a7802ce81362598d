package http

import (
	"net/http"
	"time"
)

// Session cookie names. User and admin sessions use distinct cookies so the
// two realms can coexist in one browser.
const (
	userAccessCookie   = "tz_access"
	userRefreshCookie  = "tz_refresh"
	adminAccessCookie  = "tz_admin_access"
	adminRefreshCookie = "tz_admin_refresh"
)

// cookieWriter issues and clears a pair of session cookies.
type cookieWriter struct {
	accessName  string
	refreshName string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	secure      bool
}

func (c cookieWriter) set(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(c.accessName, accessToken, c.accessTTL))
	http.SetCookie(w, c.cookie(c.refreshName, refreshToken, c.refreshTTL))
}

func (c cookieWriter) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.accessName, "", -time.Second))
	http.SetCookie(w, c.cookie(c.refreshName, "", -time.Second))
}

func (c cookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// refreshTokenFrom extracts the raw refresh token from the named cookie,
// falling back to the request body for non-browser clients.
func refreshTokenFrom(r *http.Request, cookieName, bodyToken string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bodyToken
}
