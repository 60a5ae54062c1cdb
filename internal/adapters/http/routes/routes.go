package routes

import (
	"fss-elibrary/internal/adapters/http/handlers"
	"fss-elibrary/internal/adapters/http/middleware"
	"fss-elibrary/internal/adapters/persistence/repositories"
	"fss-elibrary/internal/config"
	"fss-elibrary/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	resourceRepo := repositories.NewResourceRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	lendingUow := repositories.NewLendingUnitOfWork(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	catalogService := services.NewCatalogService(resourceRepo)
	lendingService := services.NewLendingService(lendingUow, loanRepo, cfg.Lending)
	dashboardService := services.NewDashboardService(resourceRepo, loanRepo, userRepo, cfg.Lending.DueSoonDays)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	lendingHandler := handlers.NewLendingHandler(lendingService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, catalogHandler,
		lendingHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	lendingHandler *handlers.LendingHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Catalog routes (authenticated, create is admin only)
	resourceRoutes := router.Group("/resources")
	resourceRoutes.Use(middleware.AuthMiddleware(cfg))
	setupResourceRoutes(resourceRoutes, catalogHandler)

	// Loan routes (authenticated members)
	loanRoutes := router.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, lendingHandler)

	// Dashboard routes (admin only)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.AdminOnly())
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupResourceRoutes configures catalog routes (Authenticated)
func setupResourceRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.Create)
}

// setupLoanRoutes configures loan routes (Authenticated)
func setupLoanRoutes(router fiber.Router, handler *handlers.LendingHandler) {
	router.Post("/", handler.Borrow)
	router.Get("/my", handler.ListActive)
	router.Get("/:id", handler.Get)
	router.Put("/:id/return", handler.Return)
}

// setupDashboardRoutes configures dashboard routes (Admin only)
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/stats", handler.Stats)
	router.Get("/activity", handler.Activity)
	router.Get("/overdue", handler.Overdue)
}
