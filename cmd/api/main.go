package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/horizon-travel/crm-api/docs" // Swagger docs
	"github.com/horizon-travel/crm-api/internal/config"
	"github.com/horizon-travel/crm-api/internal/database"
	"github.com/horizon-travel/crm-api/internal/handlers"
	"github.com/horizon-travel/crm-api/internal/jobs"
	"github.com/horizon-travel/crm-api/internal/middleware"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/services"
	"github.com/horizon-travel/crm-api/internal/storage"
	"github.com/horizon-travel/crm-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Horizon CRM API
// @version 1.0
// @description REST API for the Horizon Travel CRM back office

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management (admin only; PUT /users/:user_id is below for admin or owner)
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.POST("/users/:user_id/restore", h.User.Restore)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.PATCH("/users/:user_id/commission_rate", h.User.SetCommissionRate)

				// Trip catalogue management (admin only)
				admin.POST("/trips", h.Trip.Create)
				admin.PUT("/trips/:trip_id", h.Trip.Update)
				admin.DELETE("/trips/:trip_id", h.Trip.Delete)

				// Customer deletion (admin only)
				admin.DELETE("/customers/:customer_id", h.Customer.Delete)

				// Payment removal and repair (admin only)
				admin.DELETE("/payments/:payment_id", h.Payment.Delete)
				admin.POST("/bookings/:booking_id/recalculate", h.Payment.Recalculate)
				admin.POST("/bookings/:booking_id/commission/refresh", h.Commission.Refresh)

				// Commission settlement (admin only)
				admin.POST("/commissions/:commission_id/pay", h.Commission.MarkPaid)
				admin.GET("/agents/:agent_id/commissions/summary", h.Commission.AgentSummary)

				// Audit trail (admin only)
				admin.GET("/audit_logs", h.Audit.Index)
				admin.GET("/audit_logs/:entity/:entity_id", h.Audit.ByEntity)

				// Background jobs (admin only)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/sweep_leads", h.Job.SweepLeads)
			}

			// Agent + Admin routes (day-to-day sales work)
			agentAdmin := protected.Group("")
			agentAdmin.Use(middleware.RequireRole("admin", "agent"))
			{
				agentAdmin.GET("/users", h.User.Index)
				agentAdmin.GET("/agents", h.User.Agents)

				// Trip viewing
				agentAdmin.GET("/trips", h.Trip.Index)
				agentAdmin.GET("/trips/:trip_id", h.Trip.Show)

				// Customer management
				agentAdmin.GET("/customers", h.Customer.Index)
				agentAdmin.POST("/customers", h.Customer.Create)
				agentAdmin.GET("/customers/:customer_id", h.Customer.Show)
				agentAdmin.PUT("/customers/:customer_id", h.Customer.Update)
				agentAdmin.GET("/customers/:customer_id/bookings", h.Customer.Bookings)

				// Lead pipeline
				agentAdmin.GET("/leads", h.Lead.Index)
				agentAdmin.POST("/leads", h.Lead.Create)
				agentAdmin.GET("/leads/:lead_id", h.Lead.Show)
				agentAdmin.PUT("/leads/:lead_id", h.Lead.Update)
				agentAdmin.PATCH("/leads/:lead_id/status", h.Lead.ChangeStatus)
				agentAdmin.POST("/leads/:lead_id/status/validate", h.Lead.ValidateStatus)
				agentAdmin.POST("/leads/:lead_id/sync", h.Lead.Sync)

				// Bookings
				agentAdmin.GET("/bookings", h.Booking.Index)
				agentAdmin.POST("/bookings", h.Booking.Create)
				agentAdmin.GET("/bookings/:booking_id", h.Booking.Show)
				agentAdmin.PUT("/bookings/:booking_id", h.Booking.Update)
				agentAdmin.POST("/bookings/:booking_id/cancel", h.Booking.Cancel)

				// Payments
				agentAdmin.GET("/payments", h.Payment.Index)
				agentAdmin.POST("/payments", h.Payment.Create)
				agentAdmin.GET("/payments/:payment_id", h.Payment.Show)
				agentAdmin.POST("/payments/:payment_id/receipt", h.Payment.UploadReceipt)
				agentAdmin.GET("/payments/:payment_id/receipt", h.Payment.DownloadReceipt)

				// Commissions (agents see their own, admins see all)
				agentAdmin.GET("/commissions", h.Commission.Index)
				agentAdmin.GET("/commissions/summary", h.Commission.MySummary)
				agentAdmin.GET("/commissions/:commission_id", h.Commission.Show)
				agentAdmin.GET("/agents/:agent_id/statement", h.Commission.AgentStatement)

				// Dashboard, exports and reports
				agentAdmin.GET("/dashboard/summary", h.Dashboard.Summary)
				agentAdmin.GET("/dashboard/export/trips", h.Dashboard.ExportTrips)
				agentAdmin.GET("/dashboard/export/commissions", h.Dashboard.ExportCommissions)
				agentAdmin.GET("/dashboard/reports/monthly", h.Dashboard.MonthlySummary)
			}

			// Profile update: admin or profile owner only
			protected.GET("/users/:user_id", middleware.RequireAdminAgentOrOwner(), h.User.Show)
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Notifications (users manage their own)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Cancel abandoned leads once a day
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sweeping abandoned leads...")
		count, err := svcs.Lead.SweepAbandoned(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			logger.Info("[Job] Cancelled abandoned leads", "count", count)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
