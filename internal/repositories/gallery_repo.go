package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chalyati/rental-api/internal/database"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const galleryColumns = `id, title, description, image_url, category, sort_order, is_active,
	uploaded_by, created_at, updated_at`

type GalleryRepository struct {
	pool *pgxpool.Pool
}

func NewGalleryRepository(db *database.DB) *GalleryRepository {
	return &GalleryRepository{pool: db.Pool}
}

func scanGalleryRow(scanner rowScanner) (*models.GalleryImage, error) {
	var image models.GalleryImage
	var uploadedBy *string

	err := scanner.Scan(
		&image.ID, &image.Title, &image.Description, &image.ImageURL,
		&image.Category, &image.SortOrder, &image.IsActive,
		&uploadedBy, &image.CreatedAt, &image.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if uploadedBy != nil {
		image.UploadedBy = *uploadedBy
	}

	return &image, nil
}

func scanGalleryRows(rows pgx.Rows) ([]*models.GalleryImage, error) {
	defer rows.Close()

	images := make([]*models.GalleryImage, 0)

	for rows.Next() {
		image, err := scanGalleryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return images, nil
}

// ListActive returns active images for the public site, optionally
// narrowed to a category, in sort order.
func (r *GalleryRepository) ListActive(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	query := `
		SELECT ` + galleryColumns + `
		FROM gallery_images
		WHERE is_active = TRUE AND ($1 = '' OR category = $1)
		ORDER BY sort_order, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery images: %w", err)
	}

	return scanGalleryRows(rows)
}

// ListAll returns every image, active or not, for the admin panel.
func (r *GalleryRepository) ListAll(ctx context.Context) ([]*models.GalleryImage, error) {
	query := `SELECT ` + galleryColumns + ` FROM gallery_images ORDER BY category, sort_order, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery images: %w", err)
	}

	return scanGalleryRows(rows)
}

func (r *GalleryRepository) GetByID(ctx context.Context, id string) (*models.GalleryImage, error) {
	query := `SELECT ` + galleryColumns + ` FROM gallery_images WHERE id = $1`

	return scanGalleryRow(r.pool.QueryRow(ctx, query, id))
}

func (r *GalleryRepository) Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error) {
	image.ID = uuid.New().String()

	now := time.Now()
	image.CreatedAt = now
	image.UpdatedAt = now

	if image.Category == "" {
		image.Category = models.GalleryCategoryGallery
	}

	query := `
		INSERT INTO gallery_images (id, title, description, image_url, category, sort_order, is_active, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + galleryColumns

	return scanGalleryRow(r.pool.QueryRow(ctx, query,
		image.ID, image.Title, image.Description, image.ImageURL,
		image.Category, image.SortOrder, image.IsActive,
		nullable(image.UploadedBy), image.CreatedAt, image.UpdatedAt,
	))
}

func (r *GalleryRepository) Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error) {
	image.UpdatedAt = time.Now()

	query := `
		UPDATE gallery_images SET title = $1, description = $2, image_url = $3, category = $4,
			sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + galleryColumns

	return scanGalleryRow(r.pool.QueryRow(ctx, query,
		image.Title, image.Description, image.ImageURL, image.Category,
		image.SortOrder, image.IsActive, image.UpdatedAt, id,
	))
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
