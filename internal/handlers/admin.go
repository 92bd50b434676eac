package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/chalyati/rental-api/internal/services"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
)

// AdminServiceInterface defines the interface for admin account logic
type AdminServiceInterface interface {
	Authenticate(ctx context.Context, identifier, password, ipAddress string) (*services.LoginResponse, error)
	ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress string) error
	Profile(ctx context.Context, adminID string) (*services.AdminResponse, error)
}

// AdminHandler handles admin session HTTP requests
type AdminHandler struct {
	service      AdminServiceInterface
	ipConfig     *pkghttp.IPConfig
	cookieConfig auth.CookieConfig
	tokenExpiry  time.Duration
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface, ipConfig *pkghttp.IPConfig, cookieConfig auth.CookieConfig, tm *auth.TokenManager) *AdminHandler {
	return &AdminHandler{
		service:      service,
		ipConfig:     ipConfig,
		cookieConfig: cookieConfig,
		tokenExpiry:  tm.TokenExpiry(),
	}
}

// Request DTOs

// LoginRequest represents the request body for admin login. Identifier
// accepts a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255"`
	Password   string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// Login handles admin login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	resp, err := h.service.Authenticate(r.Context(), req.Identifier, req.Password, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		case errors.Is(err, models.ErrAccountLocked):
			pkghttp.WriteLocked(w, "Account is temporarily locked due to repeated failed login attempts")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	// Mirror the token in an httpOnly cookie for browser navigations
	auth.SetAdminTokenCookie(w, resp.Token, h.tokenExpiry, h.cookieConfig)

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless, so the client
// discarding the token is the actual logout; this just helps browsers.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAdminTokenCookie(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles an authenticated password change
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	err := h.service.ChangePassword(r.Context(), claims.AdminID, req.CurrentPassword, req.NewPassword, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "New password does not meet requirements")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "unauthorized")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// Profile returns the authenticated admin's account
func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	profile, err := h.service.Profile(r.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}
