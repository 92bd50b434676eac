package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/config"
	"github.com/chalyati/rental-api/internal/database"
	"github.com/chalyati/rental-api/internal/handlers"
	middlewareCustom "github.com/chalyati/rental-api/internal/middleware"
	"github.com/chalyati/rental-api/internal/routes"
	"github.com/chalyati/rental-api/internal/services"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
	pkglogger "github.com/chalyati/rental-api/pkg/logger"
)

// TestServer wraps httptest.Server with the full dependency graph
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Config *config.Config

	AdminService *services.AdminService
	logger       *slog.Logger
}

// NewTestServer initializes a complete HTTP server against a real database
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-32-characters-long-for-testing",
			TokenExpiry:      1 * time.Hour,
			MaxLoginAttempts: 5,
			LockoutDuration:  2 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
		},
	}

	adminRepo, carRepo, galleryRepo := InitializeRepositories(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	auditLogger := pkglogger.NewAuditLogger(logger)

	adminService := services.NewAdminService(
		adminRepo,
		tokenManager,
		logger,
		auditLogger,
		cfg.Auth.MaxLoginAttempts,
		cfg.Auth.LockoutDuration,
	)
	carService := services.NewCarService(carRepo, logger)
	galleryService := services.NewGalleryService(galleryRepo, logger)

	ipConfig := &pkghttp.IPConfig{}
	cookieConfig := auth.CookieConfig{SameSite: "strict"}
	adminHandler := handlers.NewAdminHandler(adminService, ipConfig, cookieConfig, tokenManager)
	carHandler := handlers.NewCarHandler(carService)
	galleryHandler := handlers.NewGalleryHandler(galleryService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, adminHandler, carHandler, galleryHandler, tokenManager, adminRepo)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		Config:       cfg,
		AdminService: adminService,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a session token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses a JSON response body into the target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractToken extracts the session token from a login response
func ExtractToken(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	var loginResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", err
	}

	token, _ := loginResp["token"].(string)
	return token, nil
}

// GetErrorCode extracts the error code from an error response
func GetErrorCode(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if code, ok := errResp["error"].(string); ok {
		return code, nil
	}
	return "", nil
}
