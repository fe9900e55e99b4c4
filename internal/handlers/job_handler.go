package handlers

import (
	"net/http"
	"time"

	"hirehub_backend/internal/auth"
	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services"
	"hirehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Публичный endpoint отклика кандидата
	r.POST("/jobs/:jobId/applications", h.RecordApplication)

	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware())
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/:jobId", h.GetJob)
		jobs.PUT("/:jobId/status", h.ChangeJobStatus)

		canApprove := middleware.RequirePermission(func(p auth.Permissions) bool { return p.CanApproveJobs })
		jobs.PUT("/:jobId/approve", canApprove, h.ApproveJob)
		jobs.PUT("/:jobId/reject", canApprove, h.RejectJob)
	}

	team := r.Group("/team")
	team.Use(middleware.AuthMiddleware())
	{
		team.POST("/:memberId/jobs", h.CreateJobAsMember)
	}
}

// CreateJob - вакансия от имени вызывающего: владелец получает сразу
// одобренную и активную, участник команды уходит на модерацию
func (h *JobHandler) CreateJob(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	req.AccountID = accountID
	req.PosterID = middleware.UserID(c)
	if middleware.IsOwner(c) {
		req.PosterModel = models.PostedByOwner
	} else {
		req.PosterModel = models.PostedByTeamMember
	}

	job, err := h.jobService.CreateJob(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toJobResponse(job))
}

// CreateJobAsMember - вакансия от имени участника команды: уходит на модерацию
func (h *JobHandler) CreateJobAsMember(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	req.AccountID = accountID
	req.PosterID = c.Param("memberId")
	req.PosterModel = models.PostedByTeamMember

	job, err := h.jobService.CreateJob(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toJobResponse(job))
}

func (h *JobHandler) GetJob(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(accountID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListJobs(accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := make([]*dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		resp = append(resp, toJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": resp, "total": len(resp)})
}

func (h *JobHandler) ApproveJob(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	if err := h.jobService.ApproveJob(accountID, middleware.UserID(c), c.Param("jobId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job approved"})
}

func (h *JobHandler) RejectJob(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.RejectJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.jobService.RejectJob(accountID, middleware.UserID(c), c.Param("jobId"), req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job rejected"})
}

func (h *JobHandler) ChangeJobStatus(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.ChangeJobStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.jobService.ChangeJobStatus(accountID, c.Param("jobId"), models.JobStatus(req.Status)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job status updated"})
}

// RecordApplication - публичный endpoint фиксации отклика кандидата
func (h *JobHandler) RecordApplication(c *gin.Context) {
	if err := h.jobService.RecordApplication(c.Param("jobId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application recorded"})
}

func toJobResponse(job *models.Job) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:               job.ID,
		Title:            job.Title,
		Description:      job.Description,
		City:             job.City,
		ApprovalStatus:   job.ApprovalStatus,
		Status:           job.Status,
		Visibility:       job.Visibility,
		PostedByModel:    job.PostedByModel,
		ApplicationCount: job.ApplicationCount,
		RejectionReason:  job.RejectionReason,
		CreatedAt:        job.CreatedAt.Format(time.RFC3339),
	}
	if job.ExpiresAt != nil {
		expires := job.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}
	return resp
}
