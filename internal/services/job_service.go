package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"

	"gorm.io/datatypes"
)

const minRejectionReasonLen = 10

// commitAttempts - сколько раз повторяется цикл допуск+коммит при
// проигранной гонке условного инкремента (ровно один повтор)
const commitAttempts = 2

type JobService interface {
	CreateJob(req *dto.CreateJobRequest) (*models.Job, error)
	GetJob(accountID, jobID string) (*models.Job, error)
	ListJobs(accountID string) ([]models.Job, error)
	ApproveJob(accountID, approverID, jobID string) error
	RejectJob(accountID, approverID, jobID, reason string) error
	ChangeJobStatus(accountID, jobID string, newStatus models.JobStatus) error
	RecordApplication(jobID string) error
}

type jobService struct {
	jobRepo          repositories.JobRepository
	quotaService     QuotaService
	notificationRepo repositories.NotificationRepository
}

func NewJobService(
	jobRepo repositories.JobRepository,
	quotaService QuotaService,
	notificationRepo repositories.NotificationRepository,
) JobService {
	return &jobService{
		jobRepo:          jobRepo,
		quotaService:     quotaService,
		notificationRepo: notificationRepo,
	}
}

// CreateJob создает вакансию под квотой active_jobs текущего плана.
// Вакансия владельца аккаунта сразу одобрена и активна; вакансия участника
// команды уходит на модерацию (pending, невидима) и потребляет слот
// active_jobs только при одобрении.
// Протокол для активной вакансии: допуск -> создание -> условный коммит.
// Проигранный коммит компенсируется удалением записи, цикл повторяется
// ровно один раз
func (s *jobService) CreateJob(req *dto.CreateJobRequest) (*models.Job, error) {
	var lastErr error

	for attempt := 0; attempt < commitAttempts; attempt++ {
		sub, err := s.quotaService.CheckAdmission(req.AccountID, ActionCreateJob)
		if err != nil {
			s.notifyLimitIfReached(req.AccountID, err)
			return nil, err
		}

		job := s.buildJob(req, &sub.Plan)

		if err := s.jobRepo.Create(job); err != nil {
			return nil, err
		}

		if job.Status == models.JobStatusActive {
			if err := s.quotaService.CommitUsage(sub.ID, models.UsageActiveJobs, 1); err != nil {
				// Компенсирующее удаление: слот заняли между допуском и коммитом
				if delErr := s.jobRepo.Delete(job.ID); delErr != nil {
					logger.Error("failed to compensate job creation", "job_id", job.ID, "error", delErr)
				}
				if errors.Is(err, appErrors.ErrJobLimitReached) {
					lastErr = err
					continue
				}
				return nil, err
			}
		}

		// jobs_posted - кумулятивный счетчик без лимита, инкремент безусловный
		if err := s.quotaService.CommitUsage(sub.ID, models.UsageJobsPosted, 1); err != nil {
			logger.Warn("failed to bump jobs_posted counter", "job_id", job.ID, "error", err)
		}

		return job, nil
	}

	s.notifyLimitIfReached(req.AccountID, lastErr)
	return nil, lastErr
}

func (s *jobService) buildJob(req *dto.CreateJobRequest, plan *models.SubscriptionPlan) *models.Job {
	categories, _ := json.Marshal(req.Categories)

	job := &models.Job{
		AccountID:     req.AccountID,
		Title:         req.Title,
		Description:   req.Description,
		City:          req.City,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
		JobType:       req.JobType,
		Categories:    datatypes.JSON(categories),
		PostedByID:    req.PosterID,
		PostedByModel: req.PosterModel,

		ApprovalStatus: models.JobApprovalPending,
		Status:         models.JobStatusPaused,
		Visibility:     false,
	}

	if req.PosterModel == models.PostedByOwner {
		// Владелец сам себе модератор
		now := time.Now()
		expires := now.AddDate(0, 0, plan.JobValidityDays)
		job.ApprovalStatus = models.JobApprovalApproved
		job.Status = models.JobStatusActive
		job.Visibility = true
		job.ApprovedBy = &req.PosterID
		job.ApprovedAt = &now
		job.ExpiresAt = &expires
	}

	return job
}

func (s *jobService) GetJob(accountID, jobID string) (*models.Job, error) {
	job, err := s.findAccountJob(accountID, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) ListJobs(accountID string) ([]models.Job, error) {
	return s.jobRepo.FindByAccountOrdered(accountID)
}

// ApproveJob переводит pending -> approved. Одобрение занимает слот
// active_jobs; при исчерпанной квоте вакансия остается pending.
// Повторное одобрение - ErrJobNotPending
func (s *jobService) ApproveJob(accountID, approverID, jobID string) error {
	job, err := s.findAccountJob(accountID, jobID)
	if err != nil {
		return err
	}
	if job.ApprovalStatus != models.JobApprovalPending {
		return appErrors.ErrJobNotPending
	}

	var lastErr error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		sub, err := s.quotaService.CheckAdmission(accountID, ActionCreateJob)
		if err != nil {
			s.notifyLimitIfReached(accountID, err)
			return err
		}

		if err := s.quotaService.CommitUsage(sub.ID, models.UsageActiveJobs, 1); err != nil {
			if errors.Is(err, appErrors.ErrJobLimitReached) {
				lastErr = err
				continue
			}
			return err
		}

		now := time.Now()
		expires := now.AddDate(0, 0, sub.Plan.JobValidityDays)
		job.ApprovalStatus = models.JobApprovalApproved
		job.Status = models.JobStatusActive
		job.Visibility = true
		job.PausedBy = models.PausedByNone
		job.ApprovedBy = &approverID
		job.ApprovedAt = &now
		job.ExpiresAt = &expires

		ok, err := s.jobRepo.UpdateIfPending(job)
		if err != nil {
			// Слот занят, но статус не записан - возвращаем слот
			if relErr := s.quotaService.ReleaseUsage(sub.ID, models.UsageActiveJobs, 1); relErr != nil {
				logger.Error("failed to release slot after approve failure", "job_id", job.ID, "error", relErr)
			}
			return err
		}
		if !ok {
			// Конкурентное решение уже принято - слот возвращаем,
			// уведомление не дублируем
			if relErr := s.quotaService.ReleaseUsage(sub.ID, models.UsageActiveJobs, 1); relErr != nil {
				logger.Error("failed to release slot after lost approve race", "job_id", job.ID, "error", relErr)
			}
			return appErrors.ErrJobNotPending
		}

		go s.notifyJobApproved(job)
		return nil
	}

	s.notifyLimitIfReached(accountID, lastErr)
	return lastErr
}

// RejectJob переводит pending -> rejected с обязательной причиной.
// Отклоненная вакансия никогда не занимала слот active_jobs
func (s *jobService) RejectJob(accountID, approverID, jobID, reason string) error {
	if len(strings.TrimSpace(reason)) < minRejectionReasonLen {
		return appErrors.ErrRejectReasonTooShort
	}

	job, err := s.findAccountJob(accountID, jobID)
	if err != nil {
		return err
	}
	if job.ApprovalStatus != models.JobApprovalPending {
		return appErrors.ErrJobNotPending
	}

	trimmed := strings.TrimSpace(reason)
	job.ApprovalStatus = models.JobApprovalRejected
	job.Status = models.JobStatusClosed
	job.Visibility = false
	job.PausedBy = models.PausedByNone
	job.RejectionReason = &trimmed
	job.ApprovedBy = &approverID

	ok, err := s.jobRepo.UpdateIfPending(job)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.ErrJobNotPending
	}

	go s.notifyJobRejected(job, trimmed)
	return nil
}

// ChangeJobStatus - ручные переходы владельца: active <-> paused, * -> closed.
// closed и expired терминальны. Возобновление проходит через квоту active_jobs
func (s *jobService) ChangeJobStatus(accountID, jobID string, newStatus models.JobStatus) error {
	job, err := s.findAccountJob(accountID, jobID)
	if err != nil {
		return err
	}

	if job.ApprovalStatus != models.JobApprovalApproved {
		return appErrors.ErrInvalidJobTransition
	}
	if job.IsTerminal() {
		return appErrors.ErrInvalidJobTransition
	}
	if newStatus == job.Status {
		return appErrors.ErrInvalidJobTransition
	}

	switch newStatus {
	case models.JobStatusPaused:
		if job.Status != models.JobStatusActive {
			return appErrors.ErrInvalidJobTransition
		}
		if err := s.jobRepo.SetRuntimeState(job.ID, models.JobStatusPaused, models.PausedByOwner, false); err != nil {
			return err
		}
		return s.releaseActiveSlot(accountID, job.ID)

	case models.JobStatusActive:
		if job.Status != models.JobStatusPaused {
			return appErrors.ErrInvalidJobTransition
		}
		return s.resumeJob(accountID, job)

	case models.JobStatusClosed:
		wasActive := job.Status == models.JobStatusActive
		if err := s.jobRepo.SetRuntimeState(job.ID, models.JobStatusClosed, models.PausedByNone, false); err != nil {
			return err
		}
		if wasActive {
			return s.releaseActiveSlot(accountID, job.ID)
		}
		return nil
	}

	return appErrors.ErrInvalidJobTransition
}

func (s *jobService) resumeJob(accountID string, job *models.Job) error {
	var lastErr error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		sub, err := s.quotaService.CheckAdmission(accountID, ActionCreateJob)
		if err != nil {
			s.notifyLimitIfReached(accountID, err)
			return err
		}
		if err := s.quotaService.CommitUsage(sub.ID, models.UsageActiveJobs, 1); err != nil {
			if errors.Is(err, appErrors.ErrJobLimitReached) {
				lastErr = err
				continue
			}
			return err
		}
		if err := s.jobRepo.SetRuntimeState(job.ID, models.JobStatusActive, models.PausedByNone, true); err != nil {
			if relErr := s.quotaService.ReleaseUsage(sub.ID, models.UsageActiveJobs, 1); relErr != nil {
				logger.Error("failed to release slot after resume failure", "job_id", job.ID, "error", relErr)
			}
			return err
		}
		return nil
	}

	s.notifyLimitIfReached(accountID, lastErr)
	return lastErr
}

func (s *jobService) releaseActiveSlot(accountID, jobID string) error {
	sub, err := s.quotaService.ResolveSubscription(accountID)
	if err != nil {
		logger.Warn("failed to resolve subscription for slot release", "job_id", jobID, "error", err)
		return nil
	}
	if err := s.quotaService.ReleaseUsage(sub.ID, models.UsageActiveJobs, 1); err != nil {
		logger.Warn("failed to release active job slot", "job_id", jobID, "error", err)
	}
	return nil
}

// RecordApplication инкрементирует счетчик откликов под лимитом
// max_applications_per_job плана
func (s *jobService) RecordApplication(jobID string) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return appErrors.ErrJobNotFound
		}
		return err
	}
	if job.Status != models.JobStatusActive || !job.Visibility {
		return appErrors.ErrJobNotFound
	}

	sub, err := s.quotaService.ResolveSubscription(job.AccountID)
	if err != nil {
		return err
	}

	limit := sub.Plan.MaxApplicationsPerJob
	ok, err := s.jobRepo.TryIncrementApplications(job.ID, limit)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.LimitReached(appErrors.ErrApplicationLimitReached, limit, job.ApplicationCount)
	}

	if err := s.quotaService.CommitUsage(sub.ID, models.UsageTotalApplications, 1); err != nil {
		logger.Warn("failed to bump total_applications counter", "job_id", job.ID, "error", err)
	}
	return nil
}

func (s *jobService) findAccountJob(accountID, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, appErrors.ErrJobNotFound
		}
		return nil, err
	}
	if job.AccountID != accountID {
		return nil, appErrors.ErrJobNotFound
	}
	return job, nil
}

func (s *jobService) notifyLimitIfReached(accountID string, err error) {
	appErr, ok := appErrors.AsAppError(err)
	if !ok || appErr.Code != appErrors.CodeJobLimitReached {
		return
	}
	limit := -1
	if details, ok := appErr.Details.(appErrors.LimitDetails); ok {
		limit = details.Limit
	}
	go func() {
		if err := s.notificationRepo.CreateLimitReachedNotification(accountID, "active jobs", limit); err != nil {
			logger.Warn("failed to create limit notification", "account_id", accountID, "error", err)
		}
	}()
}

func (s *jobService) notifyJobApproved(job *models.Job) {
	if err := s.notificationRepo.CreateJobApprovedNotification(job.PostedByID, job.ID, job.Title); err != nil {
		logger.Warn("failed to create job approved notification", "job_id", job.ID, "error", err)
	}
}

func (s *jobService) notifyJobRejected(job *models.Job, reason string) {
	if err := s.notificationRepo.CreateJobRejectedNotification(job.PostedByID, job.ID, job.Title, reason); err != nil {
		logger.Warn("failed to create job rejected notification", "job_id", job.ID, "error", err)
	}
}
