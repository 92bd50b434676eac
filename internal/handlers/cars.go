package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chalyati/rental-api/internal/models"
	"github.com/chalyati/rental-api/internal/services"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
)

// CarServiceInterface defines the interface for fleet logic
type CarServiceInterface interface {
	List(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Car, error)
	Get(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	Update(ctx context.Context, id string, car *models.Car) (*models.Car, error)
	Delete(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.Car, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// CarHandler handles car listing HTTP requests
type CarHandler struct {
	service CarServiceInterface
}

// NewCarHandler creates a new CarHandler
func NewCarHandler(service CarServiceInterface) *CarHandler {
	return &CarHandler{service: service}
}

// CarRequest represents the request body for creating or updating a car
type CarRequest struct {
	Title             string   `json:"title" validate:"required,min=3,max=200"`
	Brand             string   `json:"brand" validate:"required"`
	Type              string   `json:"type" validate:"required"`
	Transmission      string   `json:"transmission" validate:"required"`
	Fuel              string   `json:"fuel" validate:"required"`
	PricePerDay       int      `json:"price_per_day" validate:"required,gte=1"`
	Seats             int      `json:"seats" validate:"required,gte=1,lte=20"`
	MileageKm         int      `json:"mileage_km" validate:"gte=0"`
	YearOfManufacture int      `json:"year_of_manufacture" validate:"required"`
	OwnerName         string   `json:"owner_name" validate:"required,max=100"`
	ContactNumber     string   `json:"contact_number" validate:"required,max=20"`
	Images            []string `json:"images" validate:"dive,url"`
	Featured          bool     `json:"featured"`
	Description       string   `json:"description"`
	Status            string   `json:"status"`
	City              string   `json:"city" validate:"max=100"`
	State             string   `json:"state" validate:"max=100"`
	Pincode           string   `json:"pincode" validate:"max=10"`
	Features          []string `json:"features"`
}

// SetFeaturedRequest toggles the landing-page flag
type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

// SetStatusRequest moves a car between listing statuses
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CarResponse represents a car in HTTP responses
type CarResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Brand             string   `json:"brand"`
	Type              string   `json:"type"`
	Transmission      string   `json:"transmission"`
	Fuel              string   `json:"fuel"`
	PricePerDay       int      `json:"price_per_day"`
	Seats             int      `json:"seats"`
	MileageKm         int      `json:"mileage_km"`
	YearOfManufacture int      `json:"year_of_manufacture"`
	OwnerName         string   `json:"owner_name"`
	ContactNumber     string   `json:"contact_number"`
	Images            []string `json:"images"`
	Featured          bool     `json:"featured"`
	Description       string   `json:"description"`
	Status            string   `json:"status"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Pincode           string   `json:"pincode,omitempty"`
	Features          []string `json:"features"`
	Rating            float64  `json:"rating"`
	TotalRentals      int      `json:"total_rentals"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// CarPageResponse is a paginated listing response
type CarPageResponse struct {
	Cars       []*CarResponse `json:"cars"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
}

func carToResponse(car *models.Car) *CarResponse {
	return &CarResponse{
		ID:                car.ID,
		Title:             car.Title,
		Brand:             car.Brand,
		Type:              car.Type,
		Transmission:      car.Transmission,
		Fuel:              car.Fuel,
		PricePerDay:       car.PricePerDay,
		Seats:             car.Seats,
		MileageKm:         car.MileageKm,
		YearOfManufacture: car.YearOfManufacture,
		OwnerName:         car.OwnerName,
		ContactNumber:     car.ContactNumber,
		Images:            car.Images,
		Featured:          car.Featured,
		Description:       car.Description,
		Status:            car.Status,
		City:              car.City,
		State:             car.State,
		Pincode:           car.Pincode,
		Features:          car.Features,
		Rating:            car.Rating,
		TotalRentals:      car.TotalRentals,
		CreatedAt:         car.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         car.UpdatedAt.Format(time.RFC3339),
	}
}

func carsToResponses(cars []*models.Car) []*CarResponse {
	out := make([]*CarResponse, len(cars))
	for i, car := range cars {
		out[i] = carToResponse(car)
	}
	return out
}

func (req *CarRequest) toModel() *models.Car {
	return &models.Car{
		Title:             strings.TrimSpace(req.Title),
		Brand:             req.Brand,
		Type:              req.Type,
		Transmission:      req.Transmission,
		Fuel:              req.Fuel,
		PricePerDay:       req.PricePerDay,
		Seats:             req.Seats,
		MileageKm:         req.MileageKm,
		YearOfManufacture: req.YearOfManufacture,
		OwnerName:         strings.TrimSpace(req.OwnerName),
		ContactNumber:     strings.TrimSpace(req.ContactNumber),
		Images:            req.Images,
		Featured:          req.Featured,
		Description:       req.Description,
		Status:            req.Status,
		City:              req.City,
		State:             req.State,
		Pincode:           req.Pincode,
		Features:          req.Features,
	}
}

// parseCarFilters reads listing filters from query parameters. Invalid
// numeric values are treated as absent.
func parseCarFilters(r *http.Request) models.CarFilters {
	q := r.URL.Query()

	filters := models.CarFilters{
		Search:       strings.TrimSpace(q.Get("search")),
		Brand:        q.Get("brand"),
		Type:         q.Get("type"),
		Transmission: q.Get("transmission"),
		Fuel:         q.Get("fuel"),
		Status:       q.Get("status"),
		MinPrice:     queryInt(q.Get("min_price")),
		MaxPrice:     queryInt(q.Get("max_price")),
		MinSeats:     queryInt(q.Get("min_seats")),
		MaxSeats:     queryInt(q.Get("max_seats")),
		MinYear:      queryInt(q.Get("min_year")),
		MaxYear:      queryInt(q.Get("max_year")),
	}

	if raw := q.Get("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filters.Featured = &featured
		}
	}

	return filters
}

func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ListPublic handles the visitor-facing catalog. Only available cars
// show up unless the request asks for a status explicitly.
func (h *CarHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	filters := parseCarFilters(r)
	if filters.Status == "" {
		filters.Status = models.CarStatusAvailable
	}
	h.listCars(w, r, filters)
}

// List handles the admin fleet listing across all statuses
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	h.listCars(w, r, parseCarFilters(r))
}

func (h *CarHandler) listCars(w http.ResponseWriter, r *http.Request, filters models.CarFilters) {
	q := r.URL.Query()

	page := queryInt(q.Get("page"))
	perPage := queryInt(q.Get("per_page"))
	sortBy := q.Get("sort")
	descending := q.Get("order") != "asc"

	result, err := h.service.List(r.Context(), filters, sortBy, descending, page, perPage)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &CarPageResponse{
		Cars:       carsToResponses(result.Cars),
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
		Page:       result.Page,
		PerPage:    result.PerPage,
	})
}

// ListFeatured handles the landing-page featured listing
func (h *CarHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r.URL.Query().Get("limit"))

	cars, err := h.service.ListFeatured(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cars": carsToResponses(cars),
	})
}

// Options returns the filter vocabulary the search form is built from
func (h *CarHandler) Options(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"brands":        models.SupportedOptions(models.SupportedBrands),
		"types":         models.SupportedOptions(models.SupportedVehicleTypes),
		"transmissions": models.SupportedOptions(models.SupportedTransmissions),
		"fuels":         models.SupportedOptions(models.SupportedFuels),
	})
}

// Get handles a single car lookup
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	car, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Car not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, carToResponse(car))
}

// Create handles adding a car to the fleet
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		writeCarError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, carToResponse(created))
}

// Update handles replacing a car listing
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.toModel())
	if err != nil {
		writeCarError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, carToResponse(updated))
}

// Delete handles removing a car listing
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeCarError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetFeatured handles toggling the landing-page flag
func (h *CarHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	car, err := h.service.SetFeatured(r.Context(), id, req.Featured)
	if err != nil {
		writeCarError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, carToResponse(car))
}

// SetStatus handles moving a car between listing statuses
func (h *CarHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	car, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeCarError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, carToResponse(car))
}

// DashboardStats handles the admin dashboard aggregates
func (h *CarHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total_cars":       stats.TotalCars,
		"available_cars":   stats.AvailableCars,
		"rented_cars":      stats.RentedCars,
		"maintenance_cars": stats.MaintenanceCars,
		"featured_cars":    stats.FeaturedCars,
		"min_price":        stats.MinPrice,
		"max_price":        stats.MaxPrice,
		"avg_price":        stats.AvgPrice,
		"utilization_rate": stats.UtilizationRate(),
		"brand_counts":     countsToResponse(stats.BrandCounts),
		"type_counts":      countsToResponse(stats.TypeCounts),
		"recent_cars":      carsToResponses(stats.RecentCars),
	})
}

func countsToResponse(counts []models.CountByKey) []map[string]interface{} {
	out := make([]map[string]interface{}, len(counts))
	for i, c := range counts {
		out[i] = map[string]interface{}{"key": c.Key, "count": c.Count}
	}
	return out
}

// writeCarError maps service errors onto HTTP responses
func writeCarError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Car not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Conflicting resource")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
