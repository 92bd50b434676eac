package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/chalyati/rental-api/internal/models"
)

// GalleryRepository defines the storage operations for site images
type GalleryRepository interface {
	ListActive(ctx context.Context, category string) ([]*models.GalleryImage, error)
	ListAll(ctx context.Context) ([]*models.GalleryImage, error)
	GetByID(ctx context.Context, id string) (*models.GalleryImage, error)
	Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error)
	Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

// GalleryService handles site image business logic. Only URLs are managed
// here; the files themselves live on an external host.
type GalleryService struct {
	repo   GalleryRepository
	logger *slog.Logger
}

// NewGalleryService creates a new GalleryService
func NewGalleryService(repo GalleryRepository, logger *slog.Logger) *GalleryService {
	return &GalleryService{
		repo:   repo,
		logger: logger,
	}
}

func validateGalleryImage(image *models.GalleryImage) error {
	if image.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if !validImageURL(image.ImageURL) {
		return &ValidationError{Field: "image_url", Message: "must be a valid http(s) URL"}
	}
	if image.Category != "" && !models.ValidGalleryCategories[image.Category] {
		return &ValidationError{Field: "category", Message: "is not a valid category"}
	}
	return nil
}

func validImageURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ListPublic returns active images for the site, optionally by category
func (s *GalleryService) ListPublic(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	if category != "" && !models.ValidGalleryCategories[category] {
		return nil, &ValidationError{Field: "category", Message: "is not a valid category"}
	}

	images, err := s.repo.ListActive(ctx, category)
	if err != nil {
		s.logger.Error("failed to list gallery images", slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return images, nil
}

// ListAll returns every image for the admin panel
func (s *GalleryService) ListAll(ctx context.Context) ([]*models.GalleryImage, error) {
	images, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list gallery images", slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return images, nil
}

// Create validates and stores a new image record
func (s *GalleryService) Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error) {
	if err := validateGalleryImage(image); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, image)
	if err != nil {
		s.logger.Error("failed to create gallery image", slog.Any("error", err))
		return nil, models.ErrStorage
	}

	s.logger.Info("gallery image created", slog.String("image_id", created.ID), slog.String("category", created.Category))
	return created, nil
}

// Update validates and replaces an existing image record
func (s *GalleryService) Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error) {
	if err := validateGalleryImage(image); err != nil {
		return nil, err
	}
	if image.Category == "" {
		image.Category = models.GalleryCategoryGallery
	}

	updated, err := s.repo.Update(ctx, id, image)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update gallery image", slog.String("image_id", id), slog.Any("error", err))
		return nil, models.ErrStorage
	}

	return updated, nil
}

// Delete removes an image record
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete gallery image", slog.String("image_id", id), slog.Any("error", err))
		return models.ErrStorage
	}

	s.logger.Info("gallery image deleted", slog.String("image_id", id))
	return nil
}
