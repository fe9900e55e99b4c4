package dto

import (
	"time"

	"hirehub_backend/internal/models"
)

type SubscribeRequest struct {
	PlanName string `json:"plan_name" binding:"required" validate:"required"`
	Method   string `json:"method" validate:"max=50"`
}

// PaymentCallbackData - данные от платежного сервиса об успешной оплате
type PaymentCallbackData struct {
	InvID  string  `json:"inv_id" binding:"required" validate:"required"`
	OutSum float64 `json:"out_sum" binding:"required" validate:"required"`
}

type PaymentResponse struct {
	PaymentID string    `json:"payment_id"`
	InvoiceID string    `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResourceUsage - использование одного класса ресурса для клиента
type ResourceUsage struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"` // -1 означает "безлимит"
	Unlimited bool `json:"unlimited"`
}

// UsageStatsResponse - снапшот использования против квот текущего плана
type UsageStatsResponse struct {
	PlanName      string                    `json:"plan_name"`
	Status        models.SubscriptionStatus `json:"status"`
	StartDate     time.Time                 `json:"start_date"`
	EndDate       time.Time                 `json:"end_date"`
	DaysRemaining int                       `json:"days_remaining"`

	ActiveJobs   ResourceUsage `json:"active_jobs"`
	TeamMembers  ResourceUsage `json:"team_members"`
	Managers     ResourceUsage `json:"managers"`
	JobsPosted   int           `json:"jobs_posted"`
	Applications int           `json:"applications"`
}

type CreatePlanRequest struct {
	Name                  string             `json:"name" binding:"required" validate:"required,min=2,max=50"`
	DisplayName           string             `json:"display_name" binding:"required" validate:"required"`
	Price                 float64            `json:"price" validate:"min=0"`
	Currency              string             `json:"currency" validate:"max=10"`
	PeriodDays            int                `json:"period_days" binding:"required" validate:"required,min=1"`
	MaxActiveJobs         int                `json:"max_active_jobs" validate:"min=-1"`
	MaxApplicationsPerJob int                `json:"max_applications_per_job" validate:"min=-1"`
	JobValidityDays       int                `json:"job_validity_days" validate:"min=1"`
	MaxTeamMembers        int                `json:"max_team_members" validate:"min=-1"`
	MaxManagers           int                `json:"max_managers" validate:"min=-1"`
	Features              models.PlanFeatures `json:"features"`
	IsActive              bool               `json:"is_active"`
}

type UpdatePlanRequest struct {
	DisplayName           *string              `json:"display_name"`
	Price                 *float64             `json:"price"`
	Currency              *string              `json:"currency"`
	PeriodDays            *int                 `json:"period_days"`
	MaxActiveJobs         *int                 `json:"max_active_jobs"`
	MaxApplicationsPerJob *int                 `json:"max_applications_per_job"`
	JobValidityDays       *int                 `json:"job_validity_days"`
	MaxTeamMembers        *int                 `json:"max_team_members"`
	MaxManagers           *int                 `json:"max_managers"`
	Features              *models.PlanFeatures `json:"features"`
	IsActive              *bool                `json:"is_active"`
}
