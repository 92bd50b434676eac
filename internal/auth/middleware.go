package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/chalyati/rental-api/internal/models"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AdminContextKey is the key for storing admin claims in context
	AdminContextKey contextKey = "admin"
)

// AdminFetcher loads the current account state for authorization checks
type AdminFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

// Middleware validates session tokens and injects admin claims into
// context. The Authorization header wins; the admin_token cookie is the
// fallback for browser navigations.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "missing authentication token")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the session token from the Bearer header or cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if token, err := GetAdminTokenCookie(r); err == nil {
		return token
	}

	return ""
}

// RequirePermission enforces a capability on the route. The account is
// re-fetched so a deactivation or permission change takes effect
// immediately, not at token expiry.
func RequirePermission(adminRepo AdminFetcher, permission models.Permission) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetAdminFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			admin, err := adminRepo.GetByID(r.Context(), claims.AdminID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "account not found")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if !admin.IsActive {
				pkghttp.WriteUnauthorized(w, "account is deactivated")
				return
			}

			if !admin.HasPermission(permission) {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetAdminFromContext extracts admin claims from request context
func GetAdminFromContext(r *http.Request) *models.AdminClaims {
	claims, ok := r.Context().Value(AdminContextKey).(*models.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}
