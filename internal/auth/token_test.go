package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chalyati/rental-api/internal/models"
)

const testSecret = "test-secret-32-characters-long!!"

func testAdmin() *models.Admin {
	return &models.Admin{
		ID:       "b7f5e6c1-1111-2222-3333-444455556666",
		Username: "admin",
		Email:    "admin@chalyati.com",
		Role:     models.RoleAdmin,
		Permissions: []models.Permission{
			models.PermCarsRead,
			models.PermCarsUpdate,
		},
		IsActive: true,
	}
}

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	admin := testAdmin()

	tokenString, err := tm.GenerateToken(admin)
	if err != nil {
		t.Fatalf("GenerateToken() = %v, want nil", err)
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken() = %v, want nil", err)
	}

	if claims.AdminID != admin.ID {
		t.Errorf("AdminID: got %q, want %q", claims.AdminID, admin.ID)
	}
	if claims.Username != admin.Username {
		t.Errorf("Username: got %q, want %q", claims.Username, admin.Username)
	}
	if claims.Role != string(models.RoleAdmin) {
		t.Errorf("Role: got %q, want %q", claims.Role, models.RoleAdmin)
	}
	if len(claims.Permissions) != 2 {
		t.Errorf("Permissions: got %d entries, want 2", len(claims.Permissions))
	}
	if claims.Issuer != models.TokenIssuer {
		t.Errorf("Issuer: got %q, want %q", claims.Issuer, models.TokenIssuer)
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute)
	admin := testAdmin()

	tokenString, err := tm.GenerateToken(admin)
	if err != nil {
		t.Fatalf("GenerateToken() = %v, want nil", err)
	}

	if _, err := tm.ValidateToken(tokenString); err == nil {
		t.Fatal("ValidateToken() on expired token: want error, got nil")
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)
	other := NewTokenManager("other-secret-32-characters-long!", 24*time.Hour)

	tokenString, err := tm.GenerateToken(testAdmin())
	if err != nil {
		t.Fatalf("GenerateToken() = %v, want nil", err)
	}

	if _, err := other.ValidateToken(tokenString); err == nil {
		t.Fatal("ValidateToken() with wrong secret: want error, got nil")
	}
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)

	claims := &models.AdminClaims{
		AdminID:  "some-id",
		Username: "admin",
		Role:     string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "some-other-service",
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() = %v, want nil", err)
	}

	if _, err := tm.ValidateToken(tokenString); err == nil {
		t.Fatal("ValidateToken() with wrong issuer: want error, got nil")
	}
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour)

	claims := &models.AdminClaims{
		AdminID: "some-id",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    models.TokenIssuer,
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() = %v, want nil", err)
	}

	if _, err := tm.ValidateToken(tokenString); err == nil {
		t.Fatal("ValidateToken() with alg=none: want error, got nil")
	}
}
