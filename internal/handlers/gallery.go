package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/chalyati/rental-api/internal/services"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
)

// GalleryServiceInterface defines the interface for site image logic
type GalleryServiceInterface interface {
	ListPublic(ctx context.Context, category string) ([]*models.GalleryImage, error)
	ListAll(ctx context.Context) ([]*models.GalleryImage, error)
	Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error)
	Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

// GalleryHandler handles gallery HTTP requests
type GalleryHandler struct {
	service GalleryServiceInterface
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(service GalleryServiceInterface) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// GalleryImageRequest represents the request body for image records
type GalleryImageRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"required,url"`
	Category    string `json:"category"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
	IsActive    bool   `json:"is_active"`
}

// GalleryImageResponse represents an image record in HTTP responses
type GalleryImageResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
	UploadedBy  string `json:"uploaded_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func galleryImageToResponse(image *models.GalleryImage) *GalleryImageResponse {
	return &GalleryImageResponse{
		ID:          image.ID,
		Title:       image.Title,
		Description: image.Description,
		ImageURL:    image.ImageURL,
		Category:    image.Category,
		SortOrder:   image.SortOrder,
		IsActive:    image.IsActive,
		UploadedBy:  image.UploadedBy,
		CreatedAt:   image.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   image.UpdatedAt.Format(time.RFC3339),
	}
}

func galleryImagesToResponses(images []*models.GalleryImage) []*GalleryImageResponse {
	out := make([]*GalleryImageResponse, len(images))
	for i, image := range images {
		out[i] = galleryImageToResponse(image)
	}
	return out
}

// ListPublic handles the public gallery listing
func (h *GalleryHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	images, err := h.service.ListPublic(r.Context(), category)
	if err != nil {
		writeGalleryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"images": galleryImagesToResponses(images),
	})
}

// ListAll handles the admin gallery listing, including inactive images
func (h *GalleryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListAll(r.Context())
	if err != nil {
		writeGalleryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"images": galleryImagesToResponses(images),
	})
}

// Create handles adding an image record
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req GalleryImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	image := &models.GalleryImage{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Category:    req.Category,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}
	if claims := auth.GetAdminFromContext(r); claims != nil {
		image.UploadedBy = claims.AdminID
	}

	created, err := h.service.Create(r.Context(), image)
	if err != nil {
		writeGalleryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, galleryImageToResponse(created))
}

// Update handles replacing an image record
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req GalleryImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, &models.GalleryImage{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Category:    req.Category,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeGalleryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, galleryImageToResponse(updated))
}

// Delete handles removing an image record
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeGalleryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeGalleryError maps service errors onto HTTP responses
func writeGalleryError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Image not found")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
