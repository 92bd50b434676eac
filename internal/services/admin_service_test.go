package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/models"
)

const (
	testPassword = "Correct-Horse1"
	testJWTKey   = "test-secret-32-characters-long!!"
)

// fixedBase is an arbitrary reference instant for the injectable clock
var fixedBase = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func newLockoutService(t *testing.T, repo AdminRepository) (*AdminService, *time.Time) {
	t.Helper()

	tm := auth.NewTokenManager(testJWTKey, 24*time.Hour)
	svc := NewAdminService(repo, tm, newTestLogger(), newTestAuditLogger(), 5, 2*time.Hour)

	current := fixedBase
	svc.now = func() time.Time { return current }
	return svc, &current
}

func TestAuthenticate_Success(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	resp, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.ID, resp.Admin.ID)
	assert.Equal(t, "admin", resp.Admin.Username)

	stored := repo.get(admin.ID)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(fixedBase))
}

func TestAuthenticate_ByEmailCaseInsensitive(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	resp, err := svc.Authenticate(context.Background(), "ADMIN@Chalyati.COM", testPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.Admin.ID)
}

func TestAuthenticate_UnknownIdentifier(t *testing.T) {
	repo := newMemoryAdminRepo()
	svc, _ := newLockoutService(t, repo)

	_, err := svc.Authenticate(context.Background(), "nobody", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	admin.IsActive = false
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	// Even with the right password, a deactivated account is
	// indistinguishable from an unknown one
	_, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticate_EmptyInputs(t *testing.T) {
	repo := newMemoryAdminRepo()
	svc, _ := newLockoutService(t, repo)

	_, err := svc.Authenticate(context.Background(), "", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "admin", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticate_FailuresBelowThresholdDoNotLock(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	for i := 1; i <= 4; i++ {
		_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials, "attempt %d", i)

		stored := repo.get(admin.ID)
		assert.Equal(t, i, stored.LoginAttempts, "attempt %d", i)
		assert.Nil(t, stored.LockUntil, "attempt %d", i)
	}
}

func TestAuthenticate_FifthFailureLocks(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
		// The locking attempt still reads as bad credentials; the lock
		// only surfaces on subsequent attempts
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	stored := repo.get(admin.ID)
	assert.Equal(t, 5, stored.LoginAttempts)
	require.NotNil(t, stored.LockUntil)
	assert.True(t, stored.LockUntil.Equal(fixedBase.Add(2*time.Hour)))
}

func TestAuthenticate_LockedRejectsCorrectPassword(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, clock := newLockoutService(t, repo)

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	}

	// One minute before expiry the lock still holds, and the attempt
	// must not mutate the counter or extend the lock
	*clock = fixedBase.Add(2*time.Hour - time.Minute)
	_, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrAccountLocked)

	stored := repo.get(admin.ID)
	assert.Equal(t, 5, stored.LoginAttempts)
	require.NotNil(t, stored.LockUntil)
	assert.True(t, stored.LockUntil.Equal(fixedBase.Add(2*time.Hour)))
}

func TestAuthenticate_LockedRejectsWrongPassword(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, clock := newLockoutService(t, repo)

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	}

	*clock = fixedBase.Add(time.Hour)
	_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrAccountLocked)

	stored := repo.get(admin.ID)
	assert.Equal(t, 5, stored.LoginAttempts)
}

func TestAuthenticate_ExpiredLockFailureRestartsAtOne(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, clock := newLockoutService(t, repo)

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	}

	// Past expiry the account is attemptable again; a failure starts a
	// fresh cycle, it does not resume at five
	*clock = fixedBase.Add(2*time.Hour + time.Second)
	_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	stored := repo.get(admin.ID)
	assert.Equal(t, 1, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestAuthenticate_ExpiredLockSuccessResets(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, clock := newLockoutService(t, repo)

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	}

	*clock = fixedBase.Add(2*time.Hour + time.Second)
	resp, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	stored := repo.get(admin.ID)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestAuthenticate_SuccessResetsPartialCount(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	for i := 0; i < 3; i++ {
		_, _ = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	}

	_, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	require.NoError(t, err)

	// A later failure counts from one again
	_, err = svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, repo.get(admin.ID).LoginAttempts)
}

func TestAuthenticate_ConcurrentLockRace(t *testing.T) {
	// The store reports the account got locked between our read and the
	// failure write; the caller sees the lock, not invalid credentials
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := &MockAdminRepository{
		GetActiveByIdentifierFunc: func(ctx context.Context, identifier string) (*models.Admin, error) {
			copied := *admin
			return &copied, nil
		},
		RecordFailedAttemptFunc: func(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error) {
			return 0, nil, models.ErrAccountLocked
		},
	}
	svc, _ := newLockoutService(t, repo)

	_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrAccountLocked)
}

func TestAuthenticate_StorageFailureOnLookup(t *testing.T) {
	repo := &MockAdminRepository{
		GetActiveByIdentifierFunc: func(ctx context.Context, identifier string) (*models.Admin, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, _ := newLockoutService(t, repo)

	_, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestAuthenticate_StorageFailureOnRecord(t *testing.T) {
	// A failed attempt that cannot be persisted is a hard error, not a
	// silent pass through to invalid credentials
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := &MockAdminRepository{
		GetActiveByIdentifierFunc: func(ctx context.Context, identifier string) (*models.Admin, error) {
			copied := *admin
			return &copied, nil
		},
		RecordFailedAttemptFunc: func(ctx context.Context, id string, now time.Time, threshold int, lockUntil time.Time) (int, *time.Time, error) {
			return 0, nil, errors.New("connection refused")
		},
	}
	svc, _ := newLockoutService(t, repo)

	_, err := svc.Authenticate(context.Background(), "admin", "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestAuthenticate_TokenCarriesIdentity(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	resp, err := svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	require.NoError(t, err)

	tm := auth.NewTokenManager(testJWTKey, 24*time.Hour)
	claims, err := tm.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestChangePassword_Success(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	admin.LoginAttempts = 3
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	err := svc.ChangePassword(context.Background(), admin.ID, testPassword, "New-Password99", "10.0.0.1")
	require.NoError(t, err)

	// Counters clear, and the new password authenticates
	stored := repo.get(admin.ID)
	assert.Equal(t, 0, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)

	_, err = svc.Authenticate(context.Background(), "admin", "New-Password99", "10.0.0.1")
	assert.NoError(t, err)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	err := svc.ChangePassword(context.Background(), admin.ID, "wrong-password", "New-Password99", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// The old password still works
	_, err = svc.Authenticate(context.Background(), "admin", testPassword, "10.0.0.1")
	assert.NoError(t, err)
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	err := svc.ChangePassword(context.Background(), admin.ID, testPassword, "short", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestChangePassword_UnknownAdmin(t *testing.T) {
	repo := newMemoryAdminRepo()
	svc, _ := newLockoutService(t, repo)

	err := svc.ChangePassword(context.Background(), "missing-id", testPassword, "New-Password99", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestEnsureDefaultAdmin_CreatesOnce(t *testing.T) {
	repo := newMemoryAdminRepo()
	svc, _ := newLockoutService(t, repo)

	err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin@chalyati.com", "Bootstrap-Pass1")
	require.NoError(t, err)

	// The bootstrap account authenticates and holds the full permission set
	resp, err := svc.Authenticate(context.Background(), "admin", "Bootstrap-Pass1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleSuperAdmin), resp.Admin.Role)
	assert.Len(t, resp.Admin.Permissions, len(models.AllPermissions))

	// A second boot is a no-op
	err = svc.EnsureDefaultAdmin(context.Background(), "admin2", "admin2@chalyati.com", "Bootstrap-Pass1")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), "admin2", "Bootstrap-Pass1", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestEnsureDefaultAdmin_SkipsExistingAccounts(t *testing.T) {
	existing := NewTestAdmin("owner", "owner@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(existing)
	svc, _ := newLockoutService(t, repo)

	err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin@chalyati.com", "Bootstrap-Pass1")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "admin", "Bootstrap-Pass1", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestEnsureDefaultAdmin_SkipsWithoutPassword(t *testing.T) {
	repo := newMemoryAdminRepo()
	svc, _ := newLockoutService(t, repo)

	err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin@chalyati.com", "")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "admin", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	admin := NewTestAdmin("admin", "admin@chalyati.com", testPassword)
	repo := newMemoryAdminRepo(admin)
	svc, _ := newLockoutService(t, repo)

	resp, err := svc.Profile(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.ID)
	assert.Equal(t, admin.Email, resp.Email)

	_, err = svc.Profile(context.Background(), "missing-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
