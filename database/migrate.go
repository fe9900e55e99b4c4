package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"hirehub_backend/internal/config"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm инициализирует GORM с URL из конфигурации
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// Migrate выполняет миграцию всех моделей
func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 для первичных ключей
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.CompanySubscription{},
		&models.PaymentTransaction{},
		&models.Job{},
		&models.TeamMember{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	logger.Info("AutoMigrate completed")
	return nil
}

// SeedPlans создает базовый каталог планов, если его еще нет.
// Существующие планы не перезаписываются: их квоты могла править админка
func SeedPlans(db *gorm.DB) error {
	for _, plan := range defaultPlans() {
		var existing models.SubscriptionPlan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check plan %s: %w", plan.Name, err)
		}

		if err := db.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.Name, err)
		}
		logger.Info("Seeded subscription plan", "name", plan.Name)
	}
	return nil
}

func defaultPlans() []models.SubscriptionPlan {
	features := func(f models.PlanFeatures) datatypes.JSON {
		data, _ := json.Marshal(f)
		return datatypes.JSON(data)
	}

	return []models.SubscriptionPlan{
		{
			Name:                  "free",
			DisplayName:           "Free",
			Price:                 0,
			Currency:              "USD",
			PeriodDays:            365,
			MaxActiveJobs:         1,
			MaxApplicationsPerJob: 30,
			JobValidityDays:       14,
			MaxTeamMembers:        1,
			MaxManagers:           0,
			Features:              features(models.PlanFeatures{}),
			IsActive:              true,
		},
		{
			Name:                  "standard",
			DisplayName:           "Standard",
			Price:                 49,
			Currency:              "USD",
			PeriodDays:            30,
			MaxActiveJobs:         10,
			MaxApplicationsPerJob: 200,
			JobValidityDays:       30,
			MaxTeamMembers:        5,
			MaxManagers:           2,
			Features:              features(models.PlanFeatures{PrioritySupport: true}),
			IsActive:              true,
		},
		{
			Name:                  "premium",
			DisplayName:           "Premium",
			Price:                 149,
			Currency:              "USD",
			PeriodDays:            30,
			MaxActiveJobs:         models.QuotaUnlimited,
			MaxApplicationsPerJob: models.QuotaUnlimited,
			JobValidityDays:       60,
			MaxTeamMembers:        models.QuotaUnlimited,
			MaxManagers:           models.QuotaUnlimited,
			Features: features(models.PlanFeatures{
				PrioritySupport: true,
				FeaturedJobs:    true,
				Analytics:       true,
			}),
			IsActive: true,
		},
	}
}
