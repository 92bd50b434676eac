package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/models"
	pkgauth "github.com/chalyati/rental-api/pkg/auth"
	pkglogger "github.com/chalyati/rental-api/pkg/logger"
)

// AdminRepository defines the storage operations the account guard needs
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Admin, error)
	EnsureFirst(ctx context.Context, admin *models.Admin) (bool, error)
	RecordFailedAttempt(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error)
	ResetLoginAttempts(ctx context.Context, id string, now time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// AdminService handles admin authentication and account lockout
type AdminService struct {
	repo        AdminRepository
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	maxLoginAttempts int
	lockoutDuration  time.Duration

	// now is swappable so lockout transitions can be tested at fixed times
	now func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(repo AdminRepository, tm *auth.TokenManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger, maxLoginAttempts int, lockoutDuration time.Duration) *AdminService {
	return &AdminService{
		repo:             repo,
		tm:               tm,
		logger:           logger,
		auditLogger:      auditLogger,
		maxLoginAttempts: maxLoginAttempts,
		lockoutDuration:  lockoutDuration,
		now:              time.Now,
	}
}

// AdminResponse represents an admin account in HTTP responses. Password
// hashes and lockout counters never appear here.
type AdminResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	LastLogin   *string  `json:"last_login,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// LoginResponse represents a successful authentication
type LoginResponse struct {
	Token string         `json:"token"`
	Admin *AdminResponse `json:"admin"`
}

// Authenticate verifies credentials and advances the lockout state machine.
//
// Unknown identifiers, inactive accounts, and wrong passwords all return
// ErrInvalidCredentials so callers cannot probe which accounts exist. Only
// an active lock is distinguishable, and solely for accounts that do exist.
func (s *AdminService) Authenticate(ctx context.Context, identifier, password, ipAddress string) (*LoginResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	admin, err := s.repo.GetActiveByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Identifier:    identifier,
				IPAddress:     ipAddress,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up admin", slog.Any("error", err))
		return nil, models.ErrStorage
	}

	now := s.now()

	// An active lock rejects the attempt outright. The counter is not
	// touched: attempts during the lock window must not extend it.
	if admin.IsLocked(now) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			AdminID:       admin.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
			Success:       false,
		})
		return nil, models.ErrAccountLocked
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, s.recordFailure(ctx, admin, ipAddress, now)
	}

	if err := s.repo.ResetLoginAttempts(ctx, admin.ID, now); err != nil {
		s.logger.Error("failed to reset login attempts", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrStorage
	}
	admin.LoginAttempts = 0
	admin.LockUntil = nil
	admin.LastLogin = &now

	token, err := s.tm.GenerateToken(admin)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin logged in", slog.String("admin_id", admin.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AdminID:   admin.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &LoginResponse{
		Token: token,
		Admin: adminModelToResponse(admin),
	}, nil
}

// recordFailure registers one failed attempt and returns the error the
// caller should surface. The response stays ErrInvalidCredentials even on
// the attempt that triggers the lock; the lock only shows on later tries.
func (s *AdminService) recordFailure(ctx context.Context, admin *models.Admin, ipAddress string, now time.Time) error {
	attempts, lockUntil, err := s.repo.RecordFailedAttempt(ctx, admin.ID, now, s.maxLoginAttempts, now.Add(s.lockoutDuration))
	if err != nil {
		if errors.Is(err, models.ErrAccountLocked) {
			// A concurrent attempt locked the account first
			return models.ErrAccountLocked
		}
		s.logger.Error("failed to record login attempt", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrStorage
	}

	event := pkglogger.AuditEvent{
		EventType:     "login_failed",
		AdminID:       admin.ID,
		IPAddress:     ipAddress,
		FailureReason: "invalid_credentials",
		Success:       false,
	}
	if lockUntil != nil {
		event.EventType = "account_locked"
		s.logger.Warn("admin account locked after repeated failures",
			slog.String("admin_id", admin.ID),
			slog.Int("attempts", attempts),
			slog.Time("lock_until", *lockUntil))
	}
	s.auditLogger.LogAuthAttempt(event)

	return models.ErrInvalidCredentials
}

// ChangePassword verifies the current password and stores a new hash. A
// successful change also clears any pending lockout state.
func (s *AdminService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress string) error {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to look up admin", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrStorage
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
		s.auditLogger.LogPasswordChange(admin.ID, ipAddress, false)
		return models.ErrInvalidCredentials
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, admin.ID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrStorage
	}

	s.logger.Info("admin password changed", slog.String("admin_id", admin.ID))
	s.auditLogger.LogPasswordChange(admin.ID, ipAddress, true)
	return nil
}

// EnsureDefaultAdmin creates a super admin when the store holds no
// accounts at all. The check and insert are a single atomic operation in
// the repository, so repeated boots (or concurrent replicas) converge on
// exactly one bootstrap account.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, username, email, password string) error {
	if password == "" {
		s.logger.Warn("bootstrap admin password not configured, skipping default admin creation")
		return nil
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		Permissions:  models.AllPermissions,
		IsActive:     true,
	}

	created, err := s.repo.EnsureFirst(ctx, admin)
	if err != nil {
		s.logger.Error("failed to ensure default admin", slog.Any("error", err))
		return err
	}

	if created {
		s.logger.Info("default admin created", slog.String("admin_id", admin.ID))
		s.auditLogger.LogAccountAction("bootstrap_admin_created", admin.ID, map[string]string{
			"username": username,
		})
	}

	return nil
}

// Profile returns the account behind a validated session token
func (s *AdminService) Profile(ctx context.Context, adminID string) (*AdminResponse, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up admin", slog.String("admin_id", adminID), slog.Any("error", err))
		return nil, models.ErrStorage
	}

	return adminModelToResponse(admin), nil
}

func adminModelToResponse(admin *models.Admin) *AdminResponse {
	resp := &AdminResponse{
		ID:          admin.ID,
		Username:    admin.Username,
		Email:       admin.Email,
		Role:        string(admin.Role),
		Permissions: models.PermissionStrings(admin.Permissions),
		FirstName:   admin.FirstName,
		LastName:    admin.LastName,
		Phone:       admin.Phone,
		CreatedAt:   admin.CreatedAt.Format(time.RFC3339),
	}
	if admin.LastLogin != nil {
		lastLogin := admin.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &lastLogin
	}
	return resp
}
