package workers

import (
	"sync"
	"testing"
	"time"

	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiryJobRepo покрывает только методы, которые трогает expiry-sweep
type expiryJobRepo struct {
	repositories.JobRepository
	mu   sync.Mutex
	jobs []*models.Job
}

func (r *expiryJobRepo) FindExpired(now time.Time) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		running := job.Status == models.JobStatusActive || job.Status == models.JobStatusPaused
		if running && job.ExpiresAt != nil && job.ExpiresAt.Before(now) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *expiryJobRepo) SetRuntimeState(id string, status models.JobStatus, pausedBy models.PausedBy, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.ID == id {
			job.Status = status
			job.PausedBy = pausedBy
			job.Visibility = visible
			return nil
		}
	}
	return repositories.ErrJobNotFound
}

func (r *expiryJobRepo) get(t *testing.T, id string) models.Job {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.ID == id {
			return *job
		}
	}
	t.Fatalf("job %s not found", id)
	return models.Job{}
}

type recordingEnforcer struct {
	mu       sync.Mutex
	accounts []string
}

func (e *recordingEnforcer) EnforcePlanLimits(accountID string) (*dto.EnforcementSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accounts = append(e.accounts, accountID)
	return &dto.EnforcementSummary{}, nil
}

func TestJobWorker_FinalizesLapsedJobs(t *testing.T) {
	t.Parallel()

	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 0, 10)

	repo := &expiryJobRepo{jobs: []*models.Job{
		{BaseModel: models.BaseModel{ID: "lapsed-active"}, AccountID: "acc-1",
			Status: models.JobStatusActive, Visibility: true, ExpiresAt: &past},
		// Окно размещения истекло, пока вакансия стояла на паузе enforcer'а
		{BaseModel: models.BaseModel{ID: "lapsed-enforcer-paused"}, AccountID: "acc-1",
			Status: models.JobStatusPaused, PausedBy: models.PausedByEnforcer, ExpiresAt: &past},
		{BaseModel: models.BaseModel{ID: "lapsed-owner-paused"}, AccountID: "acc-2",
			Status: models.JobStatusPaused, PausedBy: models.PausedByOwner, ExpiresAt: &past},
		{BaseModel: models.BaseModel{ID: "still-running"}, AccountID: "acc-1",
			Status: models.JobStatusActive, Visibility: true, ExpiresAt: &future},
	}}
	enforcer := &recordingEnforcer{}

	w := NewJobWorker(repo, enforcer)
	w.runExpiry()

	for _, id := range []string{"lapsed-active", "lapsed-enforcer-paused", "lapsed-owner-paused"} {
		job := repo.get(t, id)
		assert.Equal(t, models.JobStatusExpired, job.Status, id)
		assert.Equal(t, models.PausedByNone, job.PausedBy, id)
		assert.False(t, job.Visibility, id)
	}

	running := repo.get(t, "still-running")
	assert.Equal(t, models.JobStatusActive, running.Status)
	assert.True(t, running.Visibility)

	// Enforcement перезапускается по разу на затронутый аккаунт
	require.ElementsMatch(t, []string{"acc-1", "acc-2"}, enforcer.accounts)
}
