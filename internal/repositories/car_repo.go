package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chalyati/rental-api/internal/database"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const carColumns = `id, title, brand, vehicle_type, transmission, fuel, price_per_day, seats,
	mileage_km, year_of_manufacture, owner_name, contact_number, images, featured,
	description, status, city, state, pincode, features, rating, total_rentals,
	created_at, updated_at`

// carSortColumns whitelists sortable columns; anything else falls back to
// created_at so request input never reaches the ORDER BY clause directly.
var carSortColumns = map[string]string{
	"created_at":    "created_at",
	"price_per_day": "price_per_day",
	"year":          "year_of_manufacture",
	"rating":        "rating",
	"title":         "title",
}

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(db *database.DB) *CarRepository {
	return &CarRepository{pool: db.Pool}
}

func scanCarRow(scanner rowScanner) (*models.Car, error) {
	var car models.Car

	err := scanner.Scan(
		&car.ID, &car.Title, &car.Brand, &car.Type, &car.Transmission, &car.Fuel,
		&car.PricePerDay, &car.Seats, &car.MileageKm, &car.YearOfManufacture,
		&car.OwnerName, &car.ContactNumber, &car.Images, &car.Featured,
		&car.Description, &car.Status, &car.City, &car.State, &car.Pincode,
		&car.Features, &car.Rating, &car.TotalRentals,
		&car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &car, nil
}

func scanCarRows(rows pgx.Rows) ([]*models.Car, error) {
	defer rows.Close()

	cars := make([]*models.Car, 0)

	for rows.Next() {
		car, err := scanCarRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cars, nil
}

// buildFilterClause turns CarFilters into a WHERE clause with positional
// args. Zero-valued filters are skipped.
func buildFilterClause(filters models.CarFilters) (string, []interface{}) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)

	addCondition := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filters.Search != "" {
		addCondition("(title ILIKE '%%' || $%d || '%%' OR brand ILIKE '%%' || $%[1]d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", filters.Search)
	}
	if filters.Brand != "" {
		addCondition("brand = $%d", filters.Brand)
	}
	if filters.Type != "" {
		addCondition("vehicle_type = $%d", filters.Type)
	}
	if filters.Transmission != "" {
		addCondition("transmission = $%d", filters.Transmission)
	}
	if filters.Fuel != "" {
		addCondition("fuel = $%d", filters.Fuel)
	}
	if filters.Status != "" {
		addCondition("status = $%d", filters.Status)
	}
	if filters.Featured != nil {
		addCondition("featured = $%d", *filters.Featured)
	}
	if filters.MinPrice > 0 {
		addCondition("price_per_day >= $%d", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		addCondition("price_per_day <= $%d", filters.MaxPrice)
	}
	if filters.MinSeats > 0 {
		addCondition("seats >= $%d", filters.MinSeats)
	}
	if filters.MaxSeats > 0 {
		addCondition("seats <= $%d", filters.MaxSeats)
	}
	if filters.MinYear > 0 {
		addCondition("year_of_manufacture >= $%d", filters.MinYear)
	}
	if filters.MaxYear > 0 {
		addCondition("year_of_manufacture <= $%d", filters.MaxYear)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns a filtered, sorted page of cars plus the unpaginated total.
func (r *CarRepository) List(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error) {
	where, args := buildFilterClause(filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM cars ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, database.MapPostgresError(err)
	}

	sortCol, ok := carSortColumns[sortBy]
	if !ok {
		sortCol = "created_at"
		descending = true
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	offset := (page - 1) * perPage
	args = append(args, perPage, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM cars %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		carColumns, where, sortCol, direction, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}

	cars, err := scanCarRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.CarPage{
		Cars:       cars,
		TotalItems: total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// ListFeatured returns featured available cars for the landing page.
func (r *CarRepository) ListFeatured(ctx context.Context, limit int) ([]*models.Car, error) {
	query := `
		SELECT ` + carColumns + `
		FROM cars
		WHERE featured = TRUE AND status = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, models.CarStatusAvailable, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured cars: %w", err)
	}

	return scanCarRows(rows)
}

func (r *CarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	return scanCarRow(r.pool.QueryRow(ctx, query, id))
}

func (r *CarRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	car.ID = uuid.New().String()

	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now

	if car.Status == "" {
		car.Status = models.CarStatusAvailable
	}
	if car.Images == nil {
		car.Images = []string{}
	}
	if car.Features == nil {
		car.Features = []string{}
	}

	query := `
		INSERT INTO cars (id, title, brand, vehicle_type, transmission, fuel, price_per_day, seats,
			mileage_km, year_of_manufacture, owner_name, contact_number, images, featured,
			description, status, city, state, pincode, features, rating, total_rentals,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING ` + carColumns

	return scanCarRow(r.pool.QueryRow(ctx, query,
		car.ID, car.Title, car.Brand, car.Type, car.Transmission, car.Fuel,
		car.PricePerDay, car.Seats, car.MileageKm, car.YearOfManufacture,
		car.OwnerName, car.ContactNumber, car.Images, car.Featured,
		car.Description, car.Status, car.City, car.State, car.Pincode,
		car.Features, car.Rating, car.TotalRentals,
		car.CreatedAt, car.UpdatedAt,
	))
}

func (r *CarRepository) Update(ctx context.Context, id string, car *models.Car) (*models.Car, error) {
	car.UpdatedAt = time.Now()

	if car.Images == nil {
		car.Images = []string{}
	}
	if car.Features == nil {
		car.Features = []string{}
	}

	query := `
		UPDATE cars SET title = $1, brand = $2, vehicle_type = $3, transmission = $4, fuel = $5,
			price_per_day = $6, seats = $7, mileage_km = $8, year_of_manufacture = $9,
			owner_name = $10, contact_number = $11, images = $12, featured = $13,
			description = $14, status = $15, city = $16, state = $17, pincode = $18,
			features = $19, updated_at = $20
		WHERE id = $21
		RETURNING ` + carColumns

	return scanCarRow(r.pool.QueryRow(ctx, query,
		car.Title, car.Brand, car.Type, car.Transmission, car.Fuel,
		car.PricePerDay, car.Seats, car.MileageKm, car.YearOfManufacture,
		car.OwnerName, car.ContactNumber, car.Images, car.Featured,
		car.Description, car.Status, car.City, car.State, car.Pincode,
		car.Features, car.UpdatedAt, id,
	))
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetFeatured toggles the landing-page flag on a single car.
func (r *CarRepository) SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error) {
	query := `
		UPDATE cars SET featured = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + carColumns

	return scanCarRow(r.pool.QueryRow(ctx, query, id, featured))
}

// UpdateStatus moves a car between listing statuses.
func (r *CarRepository) UpdateStatus(ctx context.Context, id string, status string) (*models.Car, error) {
	query := `
		UPDATE cars SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + carColumns

	return scanCarRow(r.pool.QueryRow(ctx, query, id, status))
}

// DashboardStats gathers the fleet aggregates shown on the admin dashboard.
func (r *CarRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	summaryQuery := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'available'),
			COUNT(*) FILTER (WHERE status = 'rented'),
			COUNT(*) FILTER (WHERE status = 'maintenance'),
			COUNT(*) FILTER (WHERE featured),
			COALESCE(MIN(price_per_day), 0),
			COALESCE(MAX(price_per_day), 0),
			COALESCE(AVG(price_per_day), 0)
		FROM cars
	`
	err := r.pool.QueryRow(ctx, summaryQuery).Scan(
		&stats.TotalCars, &stats.AvailableCars, &stats.RentedCars,
		&stats.MaintenanceCars, &stats.FeaturedCars,
		&stats.MinPrice, &stats.MaxPrice, &stats.AvgPrice,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	brandCounts, err := r.countByColumn(ctx, "brand")
	if err != nil {
		return nil, err
	}
	stats.BrandCounts = brandCounts

	typeCounts, err := r.countByColumn(ctx, "vehicle_type")
	if err != nil {
		return nil, err
	}
	stats.TypeCounts = typeCounts

	recentRows, err := r.pool.Query(ctx, `SELECT `+carColumns+` FROM cars ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent cars: %w", err)
	}
	recent, err := scanCarRows(recentRows)
	if err != nil {
		return nil, err
	}
	stats.RecentCars = recent

	return stats, nil
}

// countByColumn groups the fleet by a fixed column name. Only called with
// identifiers from this package, never request input.
func (r *CarRepository) countByColumn(ctx context.Context, column string) ([]models.CountByKey, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM cars GROUP BY %s ORDER BY COUNT(*) DESC, %s`, column, column, column)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s counts: %w", column, err)
	}
	defer rows.Close()

	counts := make([]models.CountByKey, 0)
	for rows.Next() {
		var c models.CountByKey
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}
