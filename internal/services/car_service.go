package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chalyati/rental-api/internal/models"
)

const (
	defaultPerPage = 12
	maxPerPage     = 100

	minManufactureYear = 1990
)

// CarRepository defines the storage operations for the fleet
type CarRepository interface {
	List(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Car, error)
	GetByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	Update(ctx context.Context, id string, car *models.Car) (*models.Car, error)
	Delete(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.Car, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// CarService handles fleet listing business logic
type CarService struct {
	repo   CarRepository
	logger *slog.Logger
}

// NewCarService creates a new CarService
func NewCarService(repo CarRepository, logger *slog.Logger) *CarService {
	return &CarService{
		repo:   repo,
		logger: logger,
	}
}

// ValidationError carries a field-level message for 400 responses
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return models.ErrBadRequest
}

// validateCar checks domain constraints before a car reaches the store
func validateCar(car *models.Car) error {
	if car.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if !models.SupportedBrands[car.Brand] {
		return &ValidationError{Field: "brand", Message: "is not a supported brand"}
	}
	if !models.SupportedVehicleTypes[car.Type] {
		return &ValidationError{Field: "type", Message: "is not a supported vehicle type"}
	}
	if !models.SupportedTransmissions[car.Transmission] {
		return &ValidationError{Field: "transmission", Message: "is not a supported transmission"}
	}
	if !models.SupportedFuels[car.Fuel] {
		return &ValidationError{Field: "fuel", Message: "is not a supported fuel type"}
	}
	if car.PricePerDay <= 0 {
		return &ValidationError{Field: "price_per_day", Message: "must be positive"}
	}
	if car.Seats < 1 || car.Seats > 20 {
		return &ValidationError{Field: "seats", Message: "must be between 1 and 20"}
	}
	if car.MileageKm < 0 {
		return &ValidationError{Field: "mileage_km", Message: "cannot be negative"}
	}
	maxYear := time.Now().Year() + 1
	if car.YearOfManufacture < minManufactureYear || car.YearOfManufacture > maxYear {
		return &ValidationError{Field: "year_of_manufacture", Message: fmt.Sprintf("must be between %d and %d", minManufactureYear, maxYear)}
	}
	if car.OwnerName == "" {
		return &ValidationError{Field: "owner_name", Message: "is required"}
	}
	if car.ContactNumber == "" {
		return &ValidationError{Field: "contact_number", Message: "is required"}
	}
	if car.Status != "" && !models.ValidCarStatuses[car.Status] {
		return &ValidationError{Field: "status", Message: "is not a valid status"}
	}
	return nil
}

// List returns a filtered page of cars. Paging inputs are clamped, and
// unknown filter values simply match nothing rather than erroring.
func (s *CarService) List(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	result, err := s.repo.List(ctx, filters, sortBy, descending, page, perPage)
	if err != nil {
		s.logger.Error("failed to list cars", slog.Any("error", err))
		return nil, models.ErrStorage
	}

	return result, nil
}

// ListFeatured returns featured available cars for the landing page
func (s *CarService) ListFeatured(ctx context.Context, limit int) ([]*models.Car, error) {
	if limit < 1 || limit > maxPerPage {
		limit = defaultPerPage
	}

	cars, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list featured cars", slog.Any("error", err))
		return nil, models.ErrStorage
	}

	return cars, nil
}

// Get returns a single car by id
func (s *CarService) Get(ctx context.Context, id string) (*models.Car, error) {
	car, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get car", slog.String("car_id", id), slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return car, nil
}

// Create validates and stores a new listing
func (s *CarService) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := validateCar(car); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, car)
	if err != nil {
		s.logger.Error("failed to create car", slog.Any("error", err))
		return nil, models.ErrStorage
	}

	s.logger.Info("car created", slog.String("car_id", created.ID), slog.String("brand", created.Brand))
	return created, nil
}

// Update validates and replaces an existing listing
func (s *CarService) Update(ctx context.Context, id string, car *models.Car) (*models.Car, error) {
	if err := validateCar(car); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, car)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update car", slog.String("car_id", id), slog.Any("error", err))
		return nil, models.ErrStorage
	}

	s.logger.Info("car updated", slog.String("car_id", id))
	return updated, nil
}

// Delete removes a listing
func (s *CarService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete car", slog.String("car_id", id), slog.Any("error", err))
		return models.ErrStorage
	}

	s.logger.Info("car deleted", slog.String("car_id", id))
	return nil
}

// SetFeatured toggles the landing-page flag
func (s *CarService) SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error) {
	car, err := s.repo.SetFeatured(ctx, id, featured)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to toggle featured flag", slog.String("car_id", id), slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return car, nil
}

// UpdateStatus moves a car between listing statuses
func (s *CarService) UpdateStatus(ctx context.Context, id string, status string) (*models.Car, error) {
	if !models.ValidCarStatuses[status] {
		return nil, &ValidationError{Field: "status", Message: "is not a valid status"}
	}

	car, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update car status", slog.String("car_id", id), slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return car, nil
}

// DashboardStats gathers fleet aggregates for the admin dashboard
func (s *CarService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		s.logger.Error("failed to compute dashboard stats", slog.Any("error", err))
		return nil, models.ErrStorage
	}
	return stats, nil
}
