package dto

import "hirehub_backend/internal/models"

type CreateJobRequest struct {
	AccountID   string   `json:"-"`
	PosterID    string   `json:"-"`
	PosterModel models.PostedByModel `json:"-"`

	Title       string   `json:"title" binding:"required" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=10000"`
	City        string   `json:"city" validate:"max=100"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	JobType     string   `json:"job_type" validate:"max=50"`
	Categories  []string `json:"categories"`
}

type RejectJobRequest struct {
	Reason string `json:"reason" binding:"required" validate:"required"`
}

type ChangeJobStatusRequest struct {
	Status string `json:"status" binding:"required" validate:"required,is-job-status"`
}

type JobResponse struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	City             string                   `json:"city,omitempty"`
	ApprovalStatus   models.JobApprovalStatus `json:"approval_status"`
	Status           models.JobStatus         `json:"status"`
	Visibility       bool                     `json:"visibility"`
	PostedByModel    models.PostedByModel     `json:"posted_by_model"`
	ApplicationCount int                      `json:"application_count"`
	RejectionReason  *string                  `json:"rejection_reason,omitempty"`
	CreatedAt        string                   `json:"created_at"`
	ExpiresAt        *string                  `json:"expires_at,omitempty"`
}
