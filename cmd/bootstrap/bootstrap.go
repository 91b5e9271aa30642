package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemed-clinic-backend/config"
	deliveryHttp "telemed-clinic-backend/internal/delivery/http"
	"telemed-clinic-backend/internal/delivery/http/handler"
	"telemed-clinic-backend/internal/delivery/http/middleware"
	"telemed-clinic-backend/internal/infrastructure/cache"
	"telemed-clinic-backend/internal/infrastructure/database"
	"telemed-clinic-backend/internal/infrastructure/document"
	"telemed-clinic-backend/internal/infrastructure/metrics"
	"telemed-clinic-backend/internal/infrastructure/notification"
	"telemed-clinic-backend/internal/infrastructure/payment"
	"telemed-clinic-backend/internal/repository"
	"telemed-clinic-backend/internal/service"
	"telemed-clinic-backend/internal/usecase"
	"telemed-clinic-backend/pkg/jwt"
	"telemed-clinic-backend/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Notifier    service.NotificationService
}

// New creates a new App instance with all dependencies initialized. envFile is optional;
// the process environment always applies.
func New(envFile string) (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	setLogLevel(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logrus.Info("Database schema migrated")
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	app.initializeServer(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, keeping info", level)
		return
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clinicMetrics := metrics.NewClinicMetrics(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientRepository()
	consultationRepo := repository.NewConsultationRepository()
	paymentRepo := repository.NewPaymentRepository()
	recordRepo := repository.NewClinicalRecordRepository()
	templateRepo := repository.NewClinicalTemplateRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	tx := database.NewTransactor(db)
	tokenStore := service.NewTokenStore(redisClient)
	eventTracker := service.NewWebhookEventTracker(redisClient)
	auditService := service.NewAuditService(log, auditLogRepo)
	rooms := service.NewRoomProvisioner(cfg.Clinic.VideoDomain)
	notifier := service.NewNotificationService(
		notification.NewEmailSender(cfg.SendGrid, log),
		log,
		clinicMetrics,
		cfg.SendGrid.FromName,
		cfg.SendGrid.SupportEmail,
		cfg.App.PublicBaseURL,
	)
	app.Notifier = notifier
	checkout := payment.NewStripeCheckoutClient(cfg.Stripe, log)
	verifier := payment.NewStripeWebhookVerifier(cfg.Stripe.WebhookSecret)
	renderer := document.NewPDFRenderer(cfg.SendGrid.FromName)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, jwtService, tokenStore, auditService)
	staffUsecase := usecase.NewStaffUsecase(tx, log, userRepo, tokenStore, notifier, auditService)
	consultationUsecase := usecase.NewConsultationUsecase(tx, log, consultationRepo, patientRepo, userRepo, rooms, notifier, auditService, clinicMetrics)
	paymentUsecase := usecase.NewPaymentUsecase(tx, log, paymentRepo, consultationRepo, patientRepo, userRepo,
		checkout, verifier, eventTracker, notifier, clinicMetrics, cfg.Clinic)
	patientUsecase := usecase.NewPatientUsecase(tx, log, patientRepo, recordRepo)
	recordUsecase := usecase.NewClinicalRecordUsecase(tx, log, recordRepo, templateRepo, patientRepo, consultationRepo, renderer, auditService)
	templateUsecase := usecase.NewClinicalTemplateUsecase(tx, log, templateRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)
	staffHandler := handler.NewStaffHandler(staffUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase)
	clinicalHandler := handler.NewClinicalHandler(recordUsecase, templateUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		consultationHandler,
		paymentHandler,
		staffHandler,
		patientHandler,
		clinicalHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), app.Config.App.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close flushes pending notifications, then closes database and redis connections
func (app *App) Close() {
	if app.Notifier != nil {
		app.Notifier.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
