package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trendzone/storefront/internal/repository"
	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
	"github.com/trendzone/storefront/pkg/validator"
)

// AdminOrderHandler handles HTTP requests for the admin order endpoints.
type AdminOrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewAdminOrderHandler creates a new admin order HTTP handler.
func NewAdminOrderHandler(orders *service.OrderService, logger *slog.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, logger: logger}
}

// UpdateOrderStatusRequest is the JSON request body for a status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

// List handles GET /api/v1/admin/orders
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: orders})
}

// Get handles GET /api/v1/admin/orders/{id}
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}

// UpdateStatus handles PUT /api/v1/admin/orders/{id}/status
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.PrincipalIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	var req UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	order, err := h.orders.Transition(r.Context(), orderID, req.Status, req.Note, adminID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}

// History handles GET /api/v1/admin/orders/{id}/history
func (h *AdminOrderHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: history})
}

// queryInt parses a non-negative integer query parameter, returning zero for
// missing or malformed values so the service applies its defaults.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
