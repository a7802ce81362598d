package http

import (
	"log/slog"
	"net/http"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
	"github.com/trendzone/storefront/pkg/validator"
)

// AdminAuthHandler handles HTTP requests for admin session endpoints.
type AdminAuthHandler struct {
	admins   *service.AdminService
	sessions *service.SessionManager
	cookies  cookieWriter
	logger   *slog.Logger
}

// NewAdminAuthHandler creates a new admin auth HTTP handler.
func NewAdminAuthHandler(admins *service.AdminService, sessions *service.SessionManager, secureCookies bool, logger *slog.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{
		admins:   admins,
		sessions: sessions,
		cookies: cookieWriter{
			accessName:  adminAccessCookie,
			refreshName: adminRefreshCookie,
			accessTTL:   sessions.AccessTTL(),
			refreshTTL:  sessions.RefreshTTL(),
			secure:      secureCookies,
		},
		logger: logger,
	}
}

// AdminLoginRequest is the JSON request body for admin login. The identifier
// may be a username or an email address.
type AdminLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/admin/auth/login
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	adminID, tokens, err := h.sessions.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	admin, err := h.admins.GetAdmin(r.Context(), adminID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.set(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{User: admin, Tokens: tokens},
	})
}

// Refresh handles POST /api/v1/admin/auth/refresh
func (h *AdminAuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	raw := refreshTokenFrom(r, h.cookies.refreshName, req.RefreshToken)
	_, tokens, err := h.sessions.Refresh(r.Context(), raw)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.set(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]any{"tokens": tokens},
	})
}

// Logout handles POST /api/v1/admin/auth/logout
func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	raw := refreshTokenFrom(r, h.cookies.refreshName, req.RefreshToken)
	if raw != "" {
		if err := h.sessions.Logout(r.Context(), raw); err != nil {
			writeAppError(w, r, err)
			return
		}
	}

	h.cookies.clear(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "logged out"},
	})
}

// Me handles GET /api/v1/admin/auth/me
func (h *AdminAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.PrincipalIDFromContext(r.Context())

	admin, err := h.admins.GetAdmin(r.Context(), adminID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: admin})
}
