package models

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer and TokenAudience pin session tokens to this deployment.
	TokenIssuer   = "chalyati-admin"
	TokenAudience = "chalyati-app"
)

// AdminClaims is the JWT payload of a session token. It carries identity and
// authorization data only; counters and hashes never leave the store.
type AdminClaims struct {
	AdminID     string   `json:"admin_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}
