package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalyati/rental-api/internal/models"
)

func newGalleryService(repo GalleryRepository) *GalleryService {
	return NewGalleryService(repo, newTestLogger())
}

func validGalleryImage() *models.GalleryImage {
	return &models.GalleryImage{
		Title:    "Showroom front",
		ImageURL: "https://cdn.chalyati.com/gallery/front.jpg",
		Category: models.GalleryCategoryGallery,
		IsActive: true,
	}
}

func TestGalleryService_Create_Valid(t *testing.T) {
	svc := newGalleryService(&MockGalleryRepository{})

	created, err := svc.Create(context.Background(), validGalleryImage())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestGalleryService_Create_Validation(t *testing.T) {
	svc := newGalleryService(&MockGalleryRepository{})

	tests := []struct {
		name   string
		mutate func(*models.GalleryImage)
		field  string
	}{
		{"missing title", func(g *models.GalleryImage) { g.Title = "" }, "title"},
		{"empty url", func(g *models.GalleryImage) { g.ImageURL = "" }, "image_url"},
		{"relative url", func(g *models.GalleryImage) { g.ImageURL = "/uploads/a.jpg" }, "image_url"},
		{"ftp url", func(g *models.GalleryImage) { g.ImageURL = "ftp://host/a.jpg" }, "image_url"},
		{"bad category", func(g *models.GalleryImage) { g.Category = "banner" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := validGalleryImage()
			tt.mutate(image)

			_, err := svc.Create(context.Background(), image)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrBadRequest)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestGalleryService_ListPublic_RejectsUnknownCategory(t *testing.T) {
	svc := newGalleryService(&MockGalleryRepository{})

	_, err := svc.ListPublic(context.Background(), "banner")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestGalleryService_ListPublic_FiltersByCategory(t *testing.T) {
	var gotCategory string
	repo := &MockGalleryRepository{
		ListActiveFunc: func(ctx context.Context, category string) ([]*models.GalleryImage, error) {
			gotCategory = category
			return []*models.GalleryImage{}, nil
		},
	}
	svc := newGalleryService(repo)

	_, err := svc.ListPublic(context.Background(), models.GalleryCategoryHero)
	require.NoError(t, err)
	assert.Equal(t, models.GalleryCategoryHero, gotCategory)
}

func TestGalleryService_Delete_NotFound(t *testing.T) {
	repo := &MockGalleryRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	svc := newGalleryService(repo)

	err := svc.Delete(context.Background(), "missing-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
