package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chalyati/rental-api/internal/models"
	pkgauth "github.com/chalyati/rental-api/pkg/auth"
	pkglogger "github.com/chalyati/rental-api/pkg/logger"
)

// newTestLogger returns a logger that discards output
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// testHashCost keeps bcrypt cheap in tests
const testHashCost = 4

func mustHash(password string) string {
	hash, err := pkgauth.HashPasswordWithCost(password, testHashCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// NewTestAdmin creates an active admin with a hashed password
func NewTestAdmin(username, email, password string) *models.Admin {
	now := time.Now()
	return &models.Admin{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: mustHash(password),
		Role:         models.RoleAdmin,
		Permissions:  []models.Permission{models.PermCarsRead},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MockAdminRepository implements AdminRepository with function fields for
// error injection
type MockAdminRepository struct {
	GetByIDFunc               func(ctx context.Context, id string) (*models.Admin, error)
	GetActiveByIdentifierFunc func(ctx context.Context, identifier string) (*models.Admin, error)
	EnsureFirstFunc           func(ctx context.Context, admin *models.Admin) (bool, error)
	RecordFailedAttemptFunc   func(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error)
	ResetLoginAttemptsFunc    func(ctx context.Context, id string, now time.Time) error
	UpdatePasswordFunc        func(ctx context.Context, id string, passwordHash string) error
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	if m.GetActiveByIdentifierFunc != nil {
		return m.GetActiveByIdentifierFunc(ctx, identifier)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) EnsureFirst(ctx context.Context, admin *models.Admin) (bool, error) {
	if m.EnsureFirstFunc != nil {
		return m.EnsureFirstFunc(ctx, admin)
	}
	return false, nil
}

func (m *MockAdminRepository) RecordFailedAttempt(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, id, now, threshold, lockUntil)
	}
	return 1, nil, nil
}

func (m *MockAdminRepository) ResetLoginAttempts(ctx context.Context, id string, now time.Time) error {
	if m.ResetLoginAttemptsFunc != nil {
		return m.ResetLoginAttemptsFunc(ctx, id, now)
	}
	return nil
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// memoryAdminRepo is a stateful in-memory AdminRepository that mirrors the
// transition semantics of the SQL implementation, for driving the lockout
// state machine through full sequences.
type memoryAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func newMemoryAdminRepo(admins ...*models.Admin) *memoryAdminRepo {
	repo := &memoryAdminRepo{admins: make(map[string]*models.Admin)}
	for _, a := range admins {
		copied := *a
		repo.admins[a.ID] = &copied
	}
	return repo
}

func (r *memoryAdminRepo) get(id string) *models.Admin {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[id]; ok {
		copied := *a
		return &copied
	}
	return nil
}

func (r *memoryAdminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if a := r.get(id); a != nil {
		return a, nil
	}
	return nil, models.ErrNotFound
}

func (r *memoryAdminRepo) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if (a.Username == identifier || strings.EqualFold(a.Email, identifier)) && a.IsActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memoryAdminRepo) EnsureFirst(ctx context.Context, admin *models.Admin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.admins) > 0 {
		return false, nil
	}
	admin.ID = uuid.New().String()
	admin.IsActive = true
	copied := *admin
	r.admins[admin.ID] = &copied
	return true, nil
}

func (r *memoryAdminRepo) RecordFailedAttempt(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admins[id]
	if !ok {
		return 0, nil, models.ErrNotFound
	}

	if a.LockUntil != nil && a.LockUntil.After(now) {
		return 0, nil, models.ErrAccountLocked
	}

	if a.LockUntil != nil && !a.LockUntil.After(now) {
		// Previous lock expired: the cycle restarts at one
		a.LoginAttempts = 1
		a.LockUntil = nil
	} else {
		a.LoginAttempts++
		if a.LoginAttempts >= threshold {
			until := lockUntil
			a.LockUntil = &until
		}
	}
	a.UpdatedAt = now

	return a.LoginAttempts, a.LockUntil, nil
}

func (r *memoryAdminRepo) ResetLoginAttempts(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admins[id]
	if !ok {
		return models.ErrNotFound
	}
	a.LoginAttempts = 0
	a.LockUntil = nil
	lastLogin := now
	a.LastLogin = &lastLogin
	a.UpdatedAt = now
	return nil
}

func (r *memoryAdminRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admins[id]
	if !ok {
		return models.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.LoginAttempts = 0
	a.LockUntil = nil
	return nil
}

// MockCarRepository implements CarRepository with function fields
type MockCarRepository struct {
	ListFunc           func(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error)
	ListFeaturedFunc   func(ctx context.Context, limit int) ([]*models.Car, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.Car, error)
	CreateFunc         func(ctx context.Context, car *models.Car) (*models.Car, error)
	UpdateFunc         func(ctx context.Context, id string, car *models.Car) (*models.Car, error)
	DeleteFunc         func(ctx context.Context, id string) error
	SetFeaturedFunc    func(ctx context.Context, id string, featured bool) (*models.Car, error)
	UpdateStatusFunc   func(ctx context.Context, id string, status string) (*models.Car, error)
	DashboardStatsFunc func(ctx context.Context) (*models.DashboardStats, error)
}

func (m *MockCarRepository) List(ctx context.Context, filters models.CarFilters, sortBy string, descending bool, page, perPage int) (*models.CarPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters, sortBy, descending, page, perPage)
	}
	return &models.CarPage{Cars: []*models.Car{}, Page: page, PerPage: perPage}, nil
}

func (m *MockCarRepository) ListFeatured(ctx context.Context, limit int) ([]*models.Car, error) {
	if m.ListFeaturedFunc != nil {
		return m.ListFeaturedFunc(ctx, limit)
	}
	return []*models.Car{}, nil
}

func (m *MockCarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCarRepository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, car)
	}
	car.ID = uuid.New().String()
	return car, nil
}

func (m *MockCarRepository) Update(ctx context.Context, id string, car *models.Car) (*models.Car, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, car)
	}
	return nil, models.ErrNotFound
}

func (m *MockCarRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCarRepository) SetFeatured(ctx context.Context, id string, featured bool) (*models.Car, error) {
	if m.SetFeaturedFunc != nil {
		return m.SetFeaturedFunc(ctx, id, featured)
	}
	return nil, models.ErrNotFound
}

func (m *MockCarRepository) UpdateStatus(ctx context.Context, id string, status string) (*models.Car, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockCarRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if m.DashboardStatsFunc != nil {
		return m.DashboardStatsFunc(ctx)
	}
	return &models.DashboardStats{}, nil
}

// MockGalleryRepository implements GalleryRepository with function fields
type MockGalleryRepository struct {
	ListActiveFunc func(ctx context.Context, category string) ([]*models.GalleryImage, error)
	ListAllFunc    func(ctx context.Context) ([]*models.GalleryImage, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.GalleryImage, error)
	CreateFunc     func(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error)
	UpdateFunc     func(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockGalleryRepository) ListActive(ctx context.Context, category string) ([]*models.GalleryImage, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, category)
	}
	return []*models.GalleryImage{}, nil
}

func (m *MockGalleryRepository) ListAll(ctx context.Context) ([]*models.GalleryImage, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.GalleryImage{}, nil
}

func (m *MockGalleryRepository) GetByID(ctx context.Context, id string) (*models.GalleryImage, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockGalleryRepository) Create(ctx context.Context, image *models.GalleryImage) (*models.GalleryImage, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, image)
	}
	image.ID = uuid.New().String()
	return image, nil
}

func (m *MockGalleryRepository) Update(ctx context.Context, id string, image *models.GalleryImage) (*models.GalleryImage, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, image)
	}
	return nil, models.ErrNotFound
}

func (m *MockGalleryRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// NewTestCar builds a car that passes domain validation
func NewTestCar(title string) *models.Car {
	return &models.Car{
		Title:             title,
		Brand:             "Toyota",
		Type:              "SUV",
		Transmission:      "Automatic",
		Fuel:              "Petrol",
		PricePerDay:       2500,
		Seats:             5,
		MileageKm:         42000,
		YearOfManufacture: 2022,
		OwnerName:         "Test Owner",
		ContactNumber:     "+911234567890",
		Status:            models.CarStatusAvailable,
	}
}
