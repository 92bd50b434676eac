package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chalyati/rental-api/internal/models"
)

// TokenManager handles JWT session token generation and validation
type TokenManager struct {
	secret      []byte
	tokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, tokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
	}
}

// GenerateToken issues a session token for an authenticated admin
func (tm *TokenManager) GenerateToken(admin *models.Admin) (string, error) {
	now := time.Now()

	claims := &models.AdminClaims{
		AdminID:     admin.ID,
		Username:    admin.Username,
		Role:        string(admin.Role),
		Permissions: models.PermissionStrings(admin.Permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   admin.ID,
			Issuer:    models.TokenIssuer,
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a session token and returns its claims. Issuer and
// audience are checked so tokens minted for other deployments never pass.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	claims := &models.AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithIssuer(models.TokenIssuer),
		jwt.WithAudience(models.TokenAudience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.AdminID == "" {
		return nil, fmt.Errorf("invalid token: missing admin id")
	}

	return claims, nil
}

// TokenExpiry exposes the configured token lifetime for cookie max-age
func (tm *TokenManager) TokenExpiry() time.Duration {
	return tm.tokenExpiry
}
