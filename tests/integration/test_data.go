package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chalyati/rental-api/internal/models"
	pkgauth "github.com/chalyati/rental-api/pkg/auth"
)

// TestAdminCreds generates unique admin credentials using a timestamp
func TestAdminCreds(suffix string) (username, email, password string) {
	ts := time.Now().UnixNano()
	username = fmt.Sprintf("admin-%d-%s", ts, suffix)
	email = fmt.Sprintf("admin-%d-%s@example.com", ts, suffix)
	password = "Test-Password123"
	return
}

// SeedAdmin inserts an active admin account with a hashed password
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, username, email, password string, permissions []models.Permission) (*models.Admin, error) {
	// Low bcrypt cost keeps the suite fast
	hashedPassword, err := pkgauth.HashPasswordWithCost(password, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO admins (username, email, password_hash, role, permissions, is_active, created_at, updated_at)
		VALUES ($1, LOWER($2), $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING id, username, email, role, is_active, login_attempts, created_at, updated_at
	`

	var admin models.Admin
	err = pool.QueryRow(ctx, query, username, email, hashedPassword, models.RoleAdmin, models.PermissionStrings(permissions)).Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.Role,
		&admin.IsActive,
		&admin.LoginAttempts,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}

	admin.Permissions = permissions
	return &admin, nil
}

// SeedCar inserts a rentable car listing
func SeedCar(ctx context.Context, pool *pgxpool.Pool, title string, featured bool) (string, error) {
	query := `
		INSERT INTO cars (
			title, brand, vehicle_type, transmission, fuel, price_per_day,
			seats, mileage_km, year_of_manufacture, owner_name, contact_number,
			featured, status, created_at, updated_at
		)
		VALUES ($1, 'Toyota', 'SUV', 'Automatic', 'Petrol', 2500, 5, 30000, 2022,
			'Test Owner', '+911234567890', $2, 'available', NOW(), NOW())
		RETURNING id
	`

	var id string
	if err := pool.QueryRow(ctx, query, title, featured).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert car: %w", err)
	}
	return id, nil
}
