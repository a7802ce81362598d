package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/validator"
)

// ContentHandler handles HTTP requests for storefront content.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a new content HTTP handler.
func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger}
}

// BannerRequest is the JSON request body for creating or updating a banner.
type BannerRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Subtitle string `json:"subtitle" validate:"max=500"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	LinkURL  string `json:"link_url" validate:"omitempty,url"`
	Position int    `json:"position" validate:"min=0"`
	Active   bool   `json:"active"`
}

func (r BannerRequest) input() service.BannerInput {
	return service.BannerInput{
		Title:    r.Title,
		Subtitle: r.Subtitle,
		ImageURL: r.ImageURL,
		LinkURL:  r.LinkURL,
		Position: r.Position,
		Active:   r.Active,
	}
}

// ListActiveBanners handles GET /api/v1/banners
func (h *ContentHandler) ListActiveBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.content.ListActiveBanners(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: banners})
}

// ListBanners handles GET /api/v1/admin/banners
func (h *ContentHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.content.ListBanners(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: banners})
}

// CreateBanner handles POST /api/v1/admin/banners
func (h *ContentHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	banner, err := h.content.CreateBanner(r.Context(), req.input())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: banner})
}

// UpdateBanner handles PUT /api/v1/admin/banners/{id}
func (h *ContentHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	banner, err := h.content.UpdateBanner(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: banner})
}

// DeleteBanner handles DELETE /api/v1/admin/banners/{id}
func (h *ContentHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteBanner(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "banner deleted"},
	})
}
