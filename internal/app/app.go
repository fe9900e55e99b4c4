package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hirehub_backend/database"
	"hirehub_backend/internal/config"
	"hirehub_backend/internal/email"
	"hirehub_backend/internal/handlers"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/routes"
	"hirehub_backend/internal/services"
	"hirehub_backend/internal/validator"
	"hirehub_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}
	if err := database.SeedPlans(gormDB); err != nil {
		logger.Fatal("Failed to seed subscription plans", "error", err)
	}
	if err := seedFirstAdmin(gormDB); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	serviceContainer := initializeServices(cfg, gormDB)
	appHandlers := initializeHandlers(serviceContainer, gormDB)

	// Фоновые воркеры живут до остановки процесса
	ctx := context.Background()
	startWorkers(ctx, gormDB, serviceContainer)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost != "" && cfg.Email.SMTPUsername != "" {
		smtpConfig := email.DefaultConfig()
		smtpConfig.Host = cfg.Email.SMTPHost
		if cfg.Email.SMTPPort != 0 {
			smtpConfig.Port = cfg.Email.SMTPPort
		}
		smtpConfig.Username = cfg.Email.SMTPUsername
		smtpConfig.Password = cfg.Email.SMTPPassword
		smtpConfig.FromEmail = cfg.Email.FromEmail
		smtpConfig.FromName = cfg.Email.FromName

		emailService = email.NewSMTPProvider(smtpConfig, email.NewTemplateManager())
	} else {
		logger.Warn("SMTP is not configured, emails will be dropped")
		emailService = email.NewNoopProvider()
	}

	userRepo := repositories.NewUserRepository(gormDB)
	planRepo := repositories.NewPlanRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	paymentRepo := repositories.NewPaymentRepository(gormDB)
	jobRepo := repositories.NewJobRepository(gormDB)
	teamRepo := repositories.NewTeamMemberRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)

	quotaService := services.NewQuotaService(subscriptionRepo, planRepo, jobRepo, teamRepo)
	enforcementService := services.NewEnforcementService(quotaService, subscriptionRepo, jobRepo, teamRepo, notificationRepo)
	authService := services.NewAuthService(userRepo)
	jobService := services.NewJobService(jobRepo, quotaService, notificationRepo)
	teamService := services.NewTeamService(teamRepo, quotaService, notificationRepo, userRepo, emailService)
	subscriptionService := services.NewSubscriptionService(
		subscriptionRepo, planRepo, paymentRepo, userRepo, notificationRepo,
		quotaService, enforcementService, emailService,
	)

	return &services.ServiceContainer{
		AuthService:         authService,
		QuotaService:        quotaService,
		EnforcementService:  enforcementService,
		JobService:          jobService,
		TeamService:         teamService,
		SubscriptionService: subscriptionService,
		EmailService:        emailService,
	}
}

func initializeHandlers(container *services.ServiceContainer, gormDB *gorm.DB) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, container.AuthService),
		JobHandler:          handlers.NewJobHandler(baseHandler, container.JobService),
		TeamHandler:         handlers.NewTeamHandler(baseHandler, container.TeamService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, container.SubscriptionService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, repositories.NewNotificationRepository(gormDB)),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func startWorkers(ctx context.Context, gormDB *gorm.DB, container *services.ServiceContainer) {
	jobRepo := repositories.NewJobRepository(gormDB)

	subscriptionWorker := workers.NewSubscriptionWorker(container.SubscriptionService)
	subscriptionWorker.Start(ctx)

	jobWorker := workers.NewJobWorker(jobRepo, container.EnforcementService)
	jobWorker.Start(ctx)

	logger.Info("Background workers started")
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		CompanyName:  "HireHub Admin",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
		IsVerified:   true,
	}

	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	return nil
}
