package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/models"
)

// mockGalleryService implements GalleryServiceInterface with function fields
type mockGalleryService struct {
	ListPublicFunc func(ctx context.Context, category string) ([]*models.GalleryImage, error)
	ListAllFunc    func(ctx context.Context) ([]*models.GalleryImage, error)
	CreateFunc     func(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error)
	UpdateFunc     func(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *mockGalleryService) ListPublic(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx, category)
	}
	return []*models.GalleryImage{}, nil
}

func (m *mockGalleryService) ListAll(ctx context.Context) ([]*models.GalleryImage, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.GalleryImage{}, nil
}

func (m *mockGalleryService) Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, image)
	}
	image.ID = "image-1"
	return image, nil
}

func (m *mockGalleryService) Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, image)
	}
	return nil, models.ErrNotFound
}

func (m *mockGalleryService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return models.ErrNotFound
}

func TestGalleryHandler_Create_RecordsUploader(t *testing.T) {
	var gotImage *models.GalleryImage
	service := &mockGalleryService{
		CreateFunc: func(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error) {
			gotImage = image
			image.ID = "image-1"
			return image, nil
		},
	}
	handler := NewGalleryHandler(service)

	body, err := json.Marshal(GalleryImageRequest{
		Title:    "Showroom front",
		ImageURL: "https://cdn.chalyati.com/gallery/front.jpg",
		Category: "gallery",
		IsActive: true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/gallery", bytes.NewBuffer(body))
	ctx := context.WithValue(req.Context(), auth.AdminContextKey, &models.AdminClaims{AdminID: "admin-1"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, gotImage)
	assert.Equal(t, "admin-1", gotImage.UploadedBy)
}

func TestGalleryHandler_Create_RejectsBadURL(t *testing.T) {
	handler := NewGalleryHandler(&mockGalleryService{})

	body, err := json.Marshal(GalleryImageRequest{
		Title:    "Showroom front",
		ImageURL: "not a url",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/gallery", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGalleryHandler_ListPublic_PassesCategory(t *testing.T) {
	var gotCategory string
	service := &mockGalleryService{
		ListPublicFunc: func(ctx context.Context, category string) ([]*models.GalleryImage, error) {
			gotCategory = category
			return []*models.GalleryImage{}, nil
		},
	}
	handler := NewGalleryHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/gallery?category=hero", nil)
	rec := httptest.NewRecorder()
	handler.ListPublic(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hero", gotCategory)
}

func TestGalleryHandler_Delete_NotFound(t *testing.T) {
	handler := NewGalleryHandler(&mockGalleryService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/gallery/missing", nil)
	req = withURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
