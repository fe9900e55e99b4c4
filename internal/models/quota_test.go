package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithinQuota(t *testing.T) {
	t.Parallel()

	assert.True(t, WithinQuota(5, 4, 1))
	assert.False(t, WithinQuota(5, 5, 1))
	assert.True(t, WithinQuota(QuotaUnlimited, 100000, 1))

	// Нулевая квота - это жесткий ноль, а не безлимит
	assert.False(t, WithinQuota(0, 0, 1))
}

func TestQuotaForPerFieldLimits(t *testing.T) {
	t.Parallel()

	plan := &SubscriptionPlan{
		MaxActiveJobs:  3,
		MaxTeamMembers: 2,
		MaxManagers:    0,
	}

	assert.Equal(t, 3, plan.QuotaFor(UsageActiveJobs))
	assert.Equal(t, 2, plan.QuotaFor(UsageTeamMembers))
	assert.Equal(t, 0, plan.QuotaFor(UsageManagers))

	// Кумулятивные счетчики план не ограничивает
	assert.Equal(t, QuotaUnlimited, plan.QuotaFor(UsageJobsPosted))
	assert.Equal(t, QuotaUnlimited, plan.QuotaFor(UsageTotalApplications))
}

func TestJobIsTerminal(t *testing.T) {
	t.Parallel()

	for _, status := range []JobStatus{JobStatusClosed, JobStatusExpired, JobStatusRejected} {
		job := &Job{Status: status}
		assert.True(t, job.IsTerminal(), string(status))
	}
	for _, status := range []JobStatus{JobStatusActive, JobStatusPaused} {
		job := &Job{Status: status}
		assert.False(t, job.IsTerminal(), string(status))
	}
}

func TestTeamMemberOccupiesSeat(t *testing.T) {
	t.Parallel()

	assert.True(t, (&TeamMember{Status: TeamMemberStatusInvited}).OccupiesSeat())
	assert.True(t, (&TeamMember{Status: TeamMemberStatusActive}).OccupiesSeat())
	assert.False(t, (&TeamMember{Status: TeamMemberStatusPaused}).OccupiesSeat())
}

func TestSubscriptionIsExpiredAt(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sub := &CompanySubscription{EndDate: now.Add(time.Hour)}
	assert.False(t, sub.IsExpiredAt(now))
	assert.True(t, sub.IsExpiredAt(now.Add(2*time.Hour)))
	assert.True(t, sub.IsExpiredAt(sub.EndDate))
}

func TestUsageSnapshotGet(t *testing.T) {
	t.Parallel()

	snapshot := UsageSnapshot{
		JobsPosted:        7,
		ActiveJobs:        3,
		TotalApplications: 42,
		TeamMembersAdded:  2,
		ManagersAdded:     1,
	}

	assert.Equal(t, 7, snapshot.Get(UsageJobsPosted))
	assert.Equal(t, 3, snapshot.Get(UsageActiveJobs))
	assert.Equal(t, 42, snapshot.Get(UsageTotalApplications))
	assert.Equal(t, 2, snapshot.Get(UsageTeamMembers))
	assert.Equal(t, 1, snapshot.Get(UsageManagers))
	assert.Equal(t, 0, snapshot.Get(UsageField("unknown")))
}
