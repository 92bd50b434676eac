package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chalyati/rental-api/internal/database"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const adminColumns = `id, username, email, password_hash, role, permissions, is_active,
	first_name, last_name, phone, login_attempts, lock_until, last_login, created_at, updated_at`

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAdminRow handles nullable fields and populates an Admin model from a database row
func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	var permissions []string
	var firstName, lastName, phone *string
	var lockUntil, lastLogin *time.Time

	err := scanner.Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.Role, &permissions, &admin.IsActive,
		&firstName, &lastName, &phone,
		&admin.LoginAttempts, &lockUntil, &lastLogin,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	admin.Permissions = make([]models.Permission, 0, len(permissions))
	for _, p := range permissions {
		admin.Permissions = append(admin.Permissions, models.Permission(p))
	}
	if firstName != nil {
		admin.FirstName = *firstName
	}
	if lastName != nil {
		admin.LastName = *lastName
	}
	if phone != nil {
		admin.Phone = *phone
	}
	admin.LockUntil = lockUntil
	admin.LastLogin = lastLogin

	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByIdentifier looks up an active admin by username or email.
// Usernames match case-sensitively, emails case-insensitively. Inactive
// accounts are filtered here so callers cannot distinguish them from
// unknown identifiers.
func (r *AdminRepository) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE (username = $1 OR LOWER(email) = LOWER($1)) AND is_active = TRUE
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, identifier))
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}

	query := `
		INSERT INTO admins (id, username, email, password_hash, role, permissions, is_active, first_name, last_name, phone, created_at, updated_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + adminColumns

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash,
		admin.Role, models.PermissionStrings(admin.Permissions), admin.IsActive,
		nullable(admin.FirstName), nullable(admin.LastName), nullable(admin.Phone),
		admin.CreatedAt, admin.UpdatedAt,
	))
}

// EnsureFirst inserts the bootstrap admin only when the admins table is
// empty. The emptiness check and insert run in a single statement, so two
// concurrent boots cannot both create an account. Returns whether a row
// was inserted.
func (r *AdminRepository) EnsureFirst(ctx context.Context, admin *models.Admin) (bool, error) {
	id := uuid.New().String()
	now := time.Now()

	if admin.Role == "" {
		admin.Role = models.RoleSuperAdmin
	}

	query := `
		INSERT INTO admins (id, username, email, password_hash, role, permissions, is_active, created_at, updated_at)
		SELECT $1, $2, LOWER($3), $4, $5, $6, TRUE, $7, $7
		WHERE NOT EXISTS (SELECT 1 FROM admins)
	`

	result, err := r.pool.Exec(ctx, query,
		id, admin.Username, admin.Email, admin.PasswordHash,
		admin.Role, models.PermissionStrings(admin.Permissions), now,
	)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return false, nil
	}

	admin.ID = id
	admin.IsActive = true
	admin.CreatedAt = now
	admin.UpdatedAt = now
	return true, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// RecordFailedAttempt advances the lockout state machine for one failed
// login. The whole transition runs in a single UPDATE so concurrent
// failures cannot lose increments:
//
//   - an expired lock means the previous lockout cycle is over, so the
//     counter restarts at 1 and the lock clears;
//   - otherwise the counter increments, and crossing the threshold sets
//     the lock expiry.
//
// Column expressions evaluate against the pre-update row, so the CASE
// arms all see the same consistent snapshot. The WHERE clause skips rows
// whose lock is still active; a concurrent request that lost that race
// gets ErrAccountLocked and the counter stays untouched.
func (r *AdminRepository) RecordFailedAttempt(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	query := `
		UPDATE admins SET
			login_attempts = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1
				ELSE login_attempts + 1
			END,
			lock_until = CASE
				WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN NULL
				WHEN login_attempts + 1 >= $3 THEN $4
				ELSE NULL
			END,
			updated_at = $2
		WHERE id = $1 AND (lock_until IS NULL OR lock_until <= $2)
		RETURNING login_attempts, lock_until
	`

	var attempts int
	var newLock *time.Time
	err := r.pool.QueryRow(ctx, query, id, now, threshold, lockUntil).Scan(&attempts, &newLock)
	if err != nil {
		mapped := database.MapPostgresError(err)
		if mapped == models.ErrNotFound {
			// The row exists but its lock is active: a concurrent attempt
			// locked the account between our read and this write.
			return 0, nil, models.ErrAccountLocked
		}
		return 0, nil, mapped
	}

	return attempts, newLock, nil
}

// ResetLoginAttempts clears the failure counter and lock after a
// successful login, and stamps last_login.
func (r *AdminRepository) ResetLoginAttempts(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE admins
		SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash. A successful change also
// clears any lockout state, matching a successful authentication.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `
		UPDATE admins
		SET password_hash = $2, login_attempts = 0, lock_until = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// nullable maps empty strings to NULL for optional columns
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
