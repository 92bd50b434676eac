package models

import (
	"time"
)

// Gallery categories
const (
	GalleryCategoryFeatured = "featured"
	GalleryCategoryGallery  = "gallery"
	GalleryCategoryHero     = "hero"
)

// ValidGalleryCategories is the whitelist of image categories.
var ValidGalleryCategories = map[string]bool{
	GalleryCategoryFeatured: true,
	GalleryCategoryGallery:  true,
	GalleryCategoryHero:     true,
}

// GalleryImage is a site image record. Only the URL is stored; file storage
// and delivery live outside this service.
type GalleryImage struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Category    string
	SortOrder   int
	IsActive    bool
	UploadedBy  string // admin id
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
