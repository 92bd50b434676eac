package models

import (
	"sort"
	"time"
)

// Car statuses
const (
	CarStatusAvailable   = "available"
	CarStatusRented      = "rented"
	CarStatusMaintenance = "maintenance"
	CarStatusUnavailable = "unavailable"
)

// ValidCarStatuses is the whitelist of listing statuses.
var ValidCarStatuses = map[string]bool{
	CarStatusAvailable:   true,
	CarStatusRented:      true,
	CarStatusMaintenance: true,
	CarStatusUnavailable: true,
}

// SupportedBrands mirrors the brands the marketing site lists.
var SupportedBrands = map[string]bool{
	"Renault": true, "Honda": true, "Suzuki": true, "Toyota": true,
	"Tata": true, "Hyundai": true, "Kia": true, "Mercedes-Benz": true,
	"Audi": true, "BMW": true, "Ford": true, "Nissan": true,
	"Volkswagen": true, "Skoda": true, "Mahindra": true,
}

// SupportedVehicleTypes is the whitelist of body types.
var SupportedVehicleTypes = map[string]bool{
	"Hatchback": true, "Sedan": true, "SUV": true, "MPV": true,
	"Coupe": true, "Convertible": true, "Wagon": true,
}

// SupportedTransmissions is the whitelist of gearbox types.
var SupportedTransmissions = map[string]bool{
	"Manual": true, "Automatic": true, "CVT": true, "AMT": true,
}

// SupportedFuels is the whitelist of fuel types.
var SupportedFuels = map[string]bool{
	"Petrol": true, "Diesel": true, "EV": true, "Hybrid": true, "CNG": true,
}

// SupportedOptions flattens one of the Supported* sets into a sorted
// list for the search-form vocabulary.
func SupportedOptions(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for value := range set {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

type Car struct {
	ID                string
	Title             string
	Brand             string
	Type              string
	Transmission      string
	Fuel              string
	PricePerDay       int
	Seats             int
	MileageKm         int
	YearOfManufacture int
	OwnerName         string
	ContactNumber     string
	Images            []string // external URLs; image storage is not handled here
	Featured          bool
	Description       string
	Status            string
	City              string
	State             string
	Pincode           string
	Features          []string
	Rating            float64
	TotalRentals      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CarFilters narrows car listings. Zero values mean "no constraint".
type CarFilters struct {
	Search       string
	Brand        string
	Type         string
	Transmission string
	Fuel         string
	Status       string
	Featured     *bool
	MinPrice     int
	MaxPrice     int
	MinSeats     int
	MaxSeats     int
	MinYear      int
	MaxYear      int
}

// CarPage is a paginated car listing.
type CarPage struct {
	Cars       []*Car
	TotalItems int
	Page       int
	PerPage    int
}

// TotalPages derives the page count from the item total.
func (p *CarPage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.TotalItems + p.PerPage - 1) / p.PerPage
}

// DashboardStats aggregates inventory numbers for the admin dashboard.
type DashboardStats struct {
	TotalCars       int
	AvailableCars   int
	RentedCars      int
	MaintenanceCars int
	FeaturedCars    int
	MinPrice        int
	MaxPrice        int
	AvgPrice        float64
	BrandCounts     []CountByKey
	TypeCounts      []CountByKey
	RecentCars      []*Car
}

// UtilizationRate is the rented share of the fleet, as a percentage.
func (s *DashboardStats) UtilizationRate() float64 {
	if s.TotalCars == 0 {
		return 0
	}
	return float64(s.RentedCars) / float64(s.TotalCars) * 100
}

// CountByKey is a single group-by bucket (brand or type breakdowns).
type CountByKey struct {
	Key   string
	Count int
}
