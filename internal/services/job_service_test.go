package services

import (
	"sync"
	"testing"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerJobRequest(accountID, title string) *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		AccountID:   accountID,
		PosterID:    accountID,
		PosterModel: models.PostedByOwner,
		Title:       title,
	}
}

func memberJobRequest(accountID, memberID, title string) *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		AccountID:   accountID,
		PosterID:    memberID,
		PosterModel: models.PostedByTeamMember,
		Title:       title,
	}
}

func TestJobService_OwnerJobIsImmediatelyActive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Go Developer"))
	require.NoError(t, err)

	assert.Equal(t, models.JobApprovalApproved, job.ApprovalStatus)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.True(t, job.Visibility)
	require.NotNil(t, job.ExpiresAt)
	require.NotNil(t, job.ApprovedAt)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.ActiveJobs)
	assert.Equal(t, 1, updated.UsageSnapshot.JobsPosted)
}

func TestJobService_MemberJobGoesPending(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	assert.Equal(t, models.JobApprovalPending, job.ApprovalStatus)
	assert.Equal(t, models.JobStatusPaused, job.Status)
	assert.False(t, job.Visibility)

	// pending не занимает слот active_jobs, но попадает в jobs_posted
	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageSnapshot.ActiveJobs)
	assert.Equal(t, 1, updated.UsageSnapshot.JobsPosted)
}

func TestJobService_CreateDeniedAtLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 1, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	_, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "First"))
	require.NoError(t, err)

	_, err = env.jobs.CreateJob(ownerJobRequest("acc-1", "Second"))
	assert.ErrorIs(t, err, appErrors.ErrJobLimitReached)

	// Компенсация: проигравшая вакансия не осталась в хранилище
	count, err := env.jobRepo.CountByAccount("acc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestJobService_ApproveTakesActiveSlot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	require.NoError(t, env.jobs.ApproveJob("acc-1", "acc-1", job.ID))

	approved, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, models.JobStatusActive, approved.Status)
	assert.True(t, approved.Visibility)
	require.NotNil(t, approved.ExpiresAt)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.ActiveJobs)
}

func TestJobService_ApproveDeniedWhenQuotaExhausted(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 1, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	_, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Occupies the slot"))
	require.NoError(t, err)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "Waiting"))
	require.NoError(t, err)

	err = env.jobs.ApproveJob("acc-1", "acc-1", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobLimitReached)

	// Вакансия остается pending и может быть одобрена позже
	stored, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobApprovalPending, stored.ApprovalStatus)
}

func TestJobService_ReapproveFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	require.NoError(t, env.jobs.ApproveJob("acc-1", "acc-1", job.ID))

	// Повторное одобрение - отказ, слот не списывается дважды
	err = env.jobs.ApproveJob("acc-1", "acc-1", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobNotPending)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.ActiveJobs)
}

func TestJobService_RejectRequiresSubstantiveReason(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	err = env.jobs.RejectJob("acc-1", "acc-1", job.ID, "spam!")
	assert.ErrorIs(t, err, appErrors.ErrRejectReasonTooShort)

	// Пробелы не считаются содержанием
	err = env.jobs.RejectJob("acc-1", "acc-1", job.ID, "   spam    ")
	assert.ErrorIs(t, err, appErrors.ErrRejectReasonTooShort)

	require.NoError(t, env.jobs.RejectJob("acc-1", "acc-1", job.ID, "duplicate of an existing posting"))

	rejected, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, models.JobStatusClosed, rejected.Status)
	assert.False(t, rejected.Visibility)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "duplicate of an existing posting", *rejected.RejectionReason)
}

func TestJobService_RejectNonPending(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Already approved"))
	require.NoError(t, err)

	err = env.jobs.RejectJob("acc-1", "acc-1", job.ID, "reason long enough to pass")
	assert.ErrorIs(t, err, appErrors.ErrJobNotPending)
}

func TestJobService_PauseReleasesSlotAndResumeRetakes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 2, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Go Developer"))
	require.NoError(t, err)

	require.NoError(t, env.jobs.ChangeJobStatus("acc-1", job.ID, models.JobStatusPaused))

	paused, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPaused, paused.Status)
	assert.Equal(t, models.PausedByOwner, paused.PausedBy)
	assert.False(t, paused.Visibility)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageSnapshot.ActiveJobs)

	require.NoError(t, env.jobs.ChangeJobStatus("acc-1", job.ID, models.JobStatusActive))

	resumed, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, resumed.Status)
	assert.Equal(t, models.PausedByNone, resumed.PausedBy)
	assert.True(t, resumed.Visibility)
}

func TestJobService_ResumeDeniedWhenQuotaTaken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 1, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	first, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "First"))
	require.NoError(t, err)
	require.NoError(t, env.jobs.ChangeJobStatus("acc-1", first.ID, models.JobStatusPaused))

	second, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Second"))
	require.NoError(t, err)
	_ = second

	// Единственный слот занят второй вакансией
	err = env.jobs.ChangeJobStatus("acc-1", first.ID, models.JobStatusActive)
	assert.ErrorIs(t, err, appErrors.ErrJobLimitReached)
}

func TestJobService_ClosedIsTerminal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Go Developer"))
	require.NoError(t, err)

	require.NoError(t, env.jobs.ChangeJobStatus("acc-1", job.ID, models.JobStatusClosed))

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageSnapshot.ActiveJobs)

	// Из closed дороги нет
	for _, status := range []models.JobStatus{models.JobStatusActive, models.JobStatusPaused} {
		err = env.jobs.ChangeJobStatus("acc-1", job.ID, status)
		assert.ErrorIs(t, err, appErrors.ErrInvalidJobTransition)
	}
}

func TestJobService_PendingJobRejectsStatusChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	err = env.jobs.ChangeJobStatus("acc-1", job.ID, models.JobStatusActive)
	assert.ErrorIs(t, err, appErrors.ErrInvalidJobTransition)
}

func TestJobService_ForeignAccountJobInvisible(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)
	env.seedSubscription(t, "acc-2", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Go Developer"))
	require.NoError(t, err)

	_, err = env.jobs.GetJob("acc-2", job.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobNotFound)

	err = env.jobs.ChangeJobStatus("acc-2", job.ID, models.JobStatusClosed)
	assert.ErrorIs(t, err, appErrors.ErrJobNotFound)
}

func TestJobService_ApplicationLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 3, 2, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Go Developer"))
	require.NoError(t, err)

	require.NoError(t, env.jobs.RecordApplication(job.ID))
	require.NoError(t, env.jobs.RecordApplication(job.ID))

	err = env.jobs.RecordApplication(job.ID)
	assert.ErrorIs(t, err, appErrors.ErrApplicationLimitReached)

	stored, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ApplicationCount)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.UsageSnapshot.TotalApplications)
}

func TestJobService_ConcurrentCreatesRespectQuota(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 5, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	const workers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.jobs.CreateJob(ownerJobRequest("acc-1", "Concurrent")); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, created)

	activeCount, err := env.jobRepo.CountByAccountStatus("acc-1", models.JobStatusActive)
	require.NoError(t, err)
	assert.EqualValues(t, 5, activeCount)

	// Проигравшие гонку компенсированы удалением
	total, err := env.jobRepo.CountByAccount("acc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
}

func TestJobService_ConcurrentApprovalsDecideOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 5, 2)
	sub := env.seedSubscription(t, "acc-1", plan)

	job, err := env.jobs.CreateJob(memberJobRequest("acc-1", "member-1", "QA Engineer"))
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.jobs.ApproveJob("acc-1", "acc-1", job.ID)
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, callErr := range errs {
		if callErr == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, callErr, appErrors.ErrJobNotPending)
	}
	assert.Equal(t, 1, approved)

	// Победитель ровно один: один занятый слот, проигравшие вернули свои
	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.ActiveJobs)

	stored, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobApprovalApproved, stored.ApprovalStatus)
	assert.Equal(t, models.JobStatusActive, stored.Status)
}
