package models

// Permission is a single admin capability. The set is closed: anything
// outside the constants below is rejected at the boundary.
type Permission string

const (
	PermCarsCreate     Permission = "cars.create"
	PermCarsRead       Permission = "cars.read"
	PermCarsUpdate     Permission = "cars.update"
	PermCarsDelete     Permission = "cars.delete"
	PermUsersRead      Permission = "users.read"
	PermUsersUpdate    Permission = "users.update"
	PermUsersDelete    Permission = "users.delete"
	PermAnalyticsRead  Permission = "analytics.read"
	PermSettingsUpdate Permission = "settings.update"
)

// AllPermissions is the whitelist of valid capabilities, in a stable order
// suitable for granting the full set to a bootstrap super admin.
var AllPermissions = []Permission{
	PermCarsCreate,
	PermCarsRead,
	PermCarsUpdate,
	PermCarsDelete,
	PermUsersRead,
	PermUsersUpdate,
	PermUsersDelete,
	PermAnalyticsRead,
	PermSettingsUpdate,
}

var validPermissions = func() map[Permission]bool {
	m := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = true
	}
	return m
}()

// IsValidPermission checks a capability against the whitelist.
func IsValidPermission(p Permission) bool {
	return validPermissions[p]
}

// FilterPermissions drops unknown capability strings, keeping input order.
func FilterPermissions(perms []string) []Permission {
	out := make([]Permission, 0, len(perms))
	for _, raw := range perms {
		if p := Permission(raw); validPermissions[p] {
			out = append(out, p)
		}
	}
	return out
}

// PermissionStrings converts a permission set for token claims and responses.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
