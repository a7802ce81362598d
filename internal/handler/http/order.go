package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
	"github.com/trendzone/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for customer-facing order endpoints.
type OrderHandler struct {
	orders  *service.OrderService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders *service.OrderService, catalog *service.CatalogService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, catalog: catalog, logger: logger}
}

// OrderItemRequest is one line of an order creation request.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the JSON request body for placing an order.
type CreateOrderRequest struct {
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency    string             `json:"currency" validate:"required,len=3"`
	ShipName    string             `json:"ship_name" validate:"required,max=200"`
	ShipAddress string             `json:"ship_address" validate:"required,max=500"`
	ShipCity    string             `json:"ship_city" validate:"required,max=100"`
	ShipCountry string             `json:"ship_country" validate:"required,max=100"`
}

// CancelOrderRequest is the JSON request body for a user-initiated cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())

	var req CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.CreateOrderInput{
		Currency:    req.Currency,
		ShipName:    req.ShipName,
		ShipAddress: req.ShipAddress,
		ShipCity:    req.ShipCity,
		ShipCountry: req.ShipCountry,
	}
	// Prices come from the catalog, never from the client.
	for _, item := range req.Items {
		product, err := h.catalog.GetProduct(r.Context(), item.ProductID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
	}

	order, err := h.orders.Create(r.Context(), userID, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: order})
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())

	orders, err := h.orders.ListForUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: orders})
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.GetForUser(r.Context(), userID, orderID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}

// History handles GET /api/v1/orders/{id}/history
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	history, err := h.orders.HistoryForUser(r.Context(), userID, orderID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: history})
}

// Cancel handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	var req CancelOrderRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validator.Validate(req); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	order, err := h.orders.CancelByUser(r.Context(), userID, orderID, req.Reason)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}
