package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chalyati/rental-api/internal/models"
)

// mockAdminFetcher returns a fixed admin or error for permission checks
type mockAdminFetcher struct {
	admin *models.Admin
	err   error
}

func (m *mockAdminFetcher) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.admin, nil
}

func issueTestToken(t *testing.T, tm *TokenManager, admin *models.Admin) string {
	t.Helper()
	tokenString, err := tm.GenerateToken(admin)
	if err != nil {
		t.Fatalf("GenerateToken() = %v, want nil", err)
	}
	return tokenString
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_MissingToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	handler := Middleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_ValidBearerToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	admin := testAdmin()

	var gotClaims *models.AdminClaims
	handler := Middleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetAdminFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, tm, admin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil || gotClaims.AdminID != admin.ID {
		t.Errorf("claims not injected into context")
	}
}

func TestMiddleware_ValidCookieToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	admin := testAdmin()

	handler := Middleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
	req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: issueTestToken(t, tm, admin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	handler := Middleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_TamperedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	handler := Middleware(tm)(okHandler())

	token := issueTestToken(t, tm, testAdmin())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func withClaims(req *http.Request, claims *models.AdminClaims) *http.Request {
	ctx := context.WithValue(req.Context(), AdminContextKey, claims)
	return req.WithContext(ctx)
}

func TestRequirePermission_Granted(t *testing.T) {
	admin := testAdmin()
	fetcher := &mockAdminFetcher{admin: admin}
	handler := RequirePermission(fetcher, models.PermCarsRead)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/cars", nil)
	req = withClaims(req, &models.AdminClaims{AdminID: admin.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	admin := testAdmin()
	fetcher := &mockAdminFetcher{admin: admin}
	handler := RequirePermission(fetcher, models.PermCarsDelete)(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/cars/x", nil)
	req = withClaims(req, &models.AdminClaims{AdminID: admin.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequirePermission_SuperAdminBypassesPermissionSet(t *testing.T) {
	admin := testAdmin()
	admin.Role = models.RoleSuperAdmin
	admin.Permissions = nil
	fetcher := &mockAdminFetcher{admin: admin}
	handler := RequirePermission(fetcher, models.PermSettingsUpdate)(okHandler())

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings", nil)
	req = withClaims(req, &models.AdminClaims{AdminID: admin.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequirePermission_DeactivatedAccount(t *testing.T) {
	admin := testAdmin()
	admin.IsActive = false
	fetcher := &mockAdminFetcher{admin: admin}
	handler := RequirePermission(fetcher, models.PermCarsRead)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/cars", nil)
	req = withClaims(req, &models.AdminClaims{AdminID: admin.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequirePermission_AccountDeleted(t *testing.T) {
	fetcher := &mockAdminFetcher{err: models.ErrNotFound}
	handler := RequirePermission(fetcher, models.PermCarsRead)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/cars", nil)
	req = withClaims(req, &models.AdminClaims{AdminID: "gone"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
