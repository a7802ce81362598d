package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
	"github.com/trendzone/storefront/pkg/validator"
)

// AdminHandler handles HTTP requests for the admin management panel: the
// admin roster and the storefront user directory.
type AdminHandler struct {
	admins *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin management HTTP handler.
func NewAdminHandler(admins *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admins: admins, logger: logger}
}

// CreateAdminRequest is the JSON request body for creating an admin.
type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// SetActiveRequest is the JSON request body for toggling an account.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// ListAdmins handles GET /api/v1/admin/admins
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: admins})
}

// GetAdmin handles GET /api/v1/admin/admins/{id}
func (h *AdminHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: admin})
}

// CreateAdmin handles POST /api/v1/admin/admins
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	admin, err := h.admins.CreateAdmin(r.Context(), service.CreateAdminInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: admin})
}

// SetAdminActive handles PUT /api/v1/admin/admins/{id}/active
func (h *AdminHandler) SetAdminActive(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.PrincipalIDFromContext(r.Context())
	adminID := chi.URLParam(r, "id")

	var req SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admins.SetAdminActive(r.Context(), actorID, adminID, req.Active); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]any{"id": adminID, "active": req.Active},
	})
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admins.ListUsers(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: users})
}

// GetUser handles GET /api/v1/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.admins.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// SetUserActive handles PUT /api/v1/admin/users/{id}/active
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admins.SetUserActive(r.Context(), userID, req.Active); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]any{"id": userID, "active": req.Active},
	})
}
