package http

import (
	"log/slog"
	"net/http"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
	"github.com/trendzone/storefront/pkg/validator"
)

// AuthHandler handles HTTP requests for user auth and account endpoints.
type AuthHandler struct {
	users    *service.UserService
	sessions *service.SessionManager
	cookies  cookieWriter
	logger   *slog.Logger
}

// NewAuthHandler creates a new user auth HTTP handler.
func NewAuthHandler(users *service.UserService, sessions *service.SessionManager, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cookies: cookieWriter{
			accessName:  userAccessCookie,
			refreshName: userRefreshCookie,
			accessTTL:   sessions.AccessTTL(),
			refreshTTL:  sessions.RefreshTTL(),
			secure:      secureCookies,
		},
		logger: logger,
	}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the JSON request body for token refresh. The body
// token is a fallback for clients that do not carry the refresh cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest is the JSON request body for profile updates.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
}

// ChangePasswordRequest is the JSON request body for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// --- Response types ---

// AuthResponse wraps principal data with the issued token pair.
type AuthResponse struct {
	User   any `json:"user"`
	Tokens any `json:"tokens"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	_, tokens, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.set(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, response{
		Data: AuthResponse{User: user, Tokens: tokens},
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	userID, tokens, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.set(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{User: user, Tokens: tokens},
	})
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
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

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
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

// GetProfile handles GET /api/v1/users/me
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// ChangePassword handles POST /api/v1/users/me/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAppError(w, r, err)
		return
	}

	// The password change revoked every refresh token, this session's
	// included. Force a fresh login.
	h.cookies.clear(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "password changed"},
	})
}
