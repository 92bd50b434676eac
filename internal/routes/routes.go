package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/handlers"
	"github.com/chalyati/rental-api/internal/middleware"
	"github.com/chalyati/rental-api/internal/models"
	"github.com/chalyati/rental-api/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	adminHandler *handlers.AdminHandler,
	carHandler *handlers.CarHandler,
	galleryHandler *handlers.GalleryHandler,
	tokenManager *auth.TokenManager,
	adminRepo *repositories.AdminRepository,
) {
	loginLimit := middleware.DefaultLoginRateLimit()
	publicLimit := middleware.DefaultPublicRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(loginLimit)).Post("/api/admin/login", adminHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(publicLimit))
		r.Get("/api/cars", carHandler.ListPublic)
		r.Get("/api/cars/featured", carHandler.ListFeatured)
		r.Get("/api/cars/options", carHandler.Options)
		r.Get("/api/cars/{id}", carHandler.Get)
		r.Get("/api/gallery", galleryHandler.ListPublic)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Post("/api/admin/logout", adminHandler.Logout)
		r.Post("/api/admin/change-password", adminHandler.ChangePassword)
		r.Get("/api/admin/profile", adminHandler.Profile)

		r.With(auth.RequirePermission(adminRepo, models.PermAnalyticsRead)).
			Get("/api/admin/dashboard", carHandler.DashboardStats)

		// Fleet management
		r.Group(func(r chi.Router) {
			r.With(auth.RequirePermission(adminRepo, models.PermCarsRead)).
				Get("/api/admin/cars", carHandler.List)
			r.With(auth.RequirePermission(adminRepo, models.PermCarsCreate)).
				Post("/api/admin/cars", carHandler.Create)
			r.With(auth.RequirePermission(adminRepo, models.PermCarsUpdate)).
				Put("/api/admin/cars/{id}", carHandler.Update)
			r.With(auth.RequirePermission(adminRepo, models.PermCarsUpdate)).
				Patch("/api/admin/cars/{id}/featured", carHandler.SetFeatured)
			r.With(auth.RequirePermission(adminRepo, models.PermCarsUpdate)).
				Patch("/api/admin/cars/{id}/status", carHandler.SetStatus)
			r.With(auth.RequirePermission(adminRepo, models.PermCarsDelete)).
				Delete("/api/admin/cars/{id}", carHandler.Delete)
		})

		// Gallery management
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(adminRepo, models.PermSettingsUpdate))
			r.Get("/api/admin/gallery", galleryHandler.ListAll)
			r.Post("/api/admin/gallery", galleryHandler.Create)
			r.Put("/api/admin/gallery/{id}", galleryHandler.Update)
			r.Delete("/api/admin/gallery/{id}", galleryHandler.Delete)
		})
	})
}
