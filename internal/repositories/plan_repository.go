package repositories

import (
	"errors"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound = errors.New("subscription plan not found")
)

type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	FindByID(id string) (*models.SubscriptionPlan, error)
	FindByName(name string) (*models.SubscriptionPlan, error)
	FindActivePlans() ([]models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Deactivate(id string) error
}

type PlanRepositoryImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &PlanRepositoryImpl{db: db}
}

func (r *PlanRepositoryImpl) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *PlanRepositoryImpl) FindByID(id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindByName(name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindActivePlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepositoryImpl) Update(plan *models.SubscriptionPlan) error {
	result := r.db.Model(plan).Updates(map[string]interface{}{
		"display_name":             plan.DisplayName,
		"price":                    plan.Price,
		"currency":                 plan.Currency,
		"period_days":              plan.PeriodDays,
		"max_active_jobs":          plan.MaxActiveJobs,
		"max_applications_per_job": plan.MaxApplicationsPerJob,
		"job_validity_days":        plan.JobValidityDays,
		"max_team_members":         plan.MaxTeamMembers,
		"max_managers":             plan.MaxManagers,
		"features":                 plan.Features,
		"is_active":                plan.IsActive,
		"updated_at":               time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Deactivate снимает план с продажи. Планы не удаляются,
// на них продолжают ссылаться существующие подписки
func (r *PlanRepositoryImpl) Deactivate(id string) error {
	result := r.db.Model(&models.SubscriptionPlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
