package models

import (
	"time"
)

// Role classifies an admin account. SuperAdmin implicitly holds every
// permission; the other roles are limited to their explicit permission set.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
)

// ValidRoles is the whitelist of assignable roles.
var ValidRoles = map[Role]bool{
	RoleSuperAdmin: true,
	RoleAdmin:      true,
	RoleModerator:  true,
}

func (r Role) Valid() bool {
	return ValidRoles[r]
}

type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Permissions  []Permission
	IsActive     bool
	FirstName    string
	LastName     string
	Phone        string

	// Lockout bookkeeping. LoginAttempts counts consecutive failures since
	// the last successful login or lock expiry; LockUntil, when set and in
	// the future, blocks authentication.
	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account lock is active at the given time.
func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// HasPermission checks a capability against the account. SuperAdmin
// short-circuits the permission set entirely.
func (a *Admin) HasPermission(p Permission) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	for _, granted := range a.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// FullName returns the profile name, falling back to the username.
func (a *Admin) FullName() string {
	if a.FirstName != "" && a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return a.Username
}
