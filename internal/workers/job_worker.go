package workers

import (
	"context"
	"time"

	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services"
)

// JobWorker финализирует вакансии с истекшим сроком размещения
type JobWorker struct {
	jobRepo            repositories.JobRepository
	enforcementService services.EnforcementService
}

func NewJobWorker(jobRepo repositories.JobRepository, enforcementService services.EnforcementService) *JobWorker {
	return &JobWorker{
		jobRepo:            jobRepo,
		enforcementService: enforcementService,
	}
}

// Start запускает фоновые задачи для вакансий
func (w *JobWorker) Start(ctx context.Context) {
	go w.expireJobs(ctx)
}

func (w *JobWorker) expireJobs(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("job worker stopped")
			return
		case <-ticker.C:
			w.runExpiry()
		}
	}
}

func (w *JobWorker) runExpiry() {
	jobs, err := w.jobRepo.FindExpired(time.Now())
	if err != nil {
		logger.WorkerLog("job", "find expired", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	// Аккаунты истекших вакансий: после финализации enforcer пересоберет
	// их счетчики и возобновит свои паузы в освободившиеся слоты
	accounts := make(map[string]struct{})

	for i := range jobs {
		job := &jobs[i]
		if err := w.jobRepo.SetRuntimeState(job.ID, models.JobStatusExpired, models.PausedByNone, false); err != nil {
			logger.Warn("failed to expire job", "job_id", job.ID, "error", err)
			continue
		}
		accounts[job.AccountID] = struct{}{}
	}

	for accountID := range accounts {
		if _, err := w.enforcementService.EnforcePlanLimits(accountID); err != nil {
			logger.Warn("enforcement after job expiry failed", "account_id", accountID, "error", err)
		}
	}

	logger.Info("expired jobs finalized", "count", len(jobs))
}
