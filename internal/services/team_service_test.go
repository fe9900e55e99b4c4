package services

import (
	"fmt"
	"testing"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addMemberRequest(accountID, name string, role models.TeamMemberRole) *dto.AddTeamMemberRequest {
	return &dto.AddTeamMemberRequest{
		AccountID: accountID,
		Name:      name,
		Email:     name + "@co.io",
		Role:      string(role),
	}
}

func TestTeamService_AddMemberWithinLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 3, 1)
	sub := env.seedSubscription(t, "acc-1", plan)

	member, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberStatusInvited, member.Status)
	assert.Equal(t, models.TeamRoleMember, member.Role)

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.TeamMembersAdded)
	assert.Equal(t, 0, updated.UsageSnapshot.ManagersAdded)
}

func TestTeamService_MemberAndManagerQuotasAreSeparate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 1, 1)
	env.seedSubscription(t, "acc-1", plan)

	_, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)

	// Лимит участников исчерпан, но менеджерская квота независима
	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "bob", models.TeamRoleMember))
	assert.ErrorIs(t, err, appErrors.ErrTeamLimitReached)

	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "kim", models.TeamRoleManager))
	require.NoError(t, err)

	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "lee", models.TeamRoleManager))
	assert.ErrorIs(t, err, appErrors.ErrManagerLimitReached)
}

func TestTeamService_DeniedAddLeavesNoRecord(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "small", 10, 100, 1, 0)
	env.seedSubscription(t, "acc-1", plan)

	_, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)

	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "bob", models.TeamRoleMember))
	require.ErrorIs(t, err, appErrors.ErrTeamLimitReached)

	// Компенсация удалила запись проигравшего
	count, err := env.teamRepo.CountByAccountRole("acc-1", models.TeamRoleMember)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTeamService_InvitedMemberOccupiesSeat(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "small", 10, 100, 1, 0)
	env.seedSubscription(t, "acc-1", plan)

	invited, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberStatusInvited, invited.Status)

	// Место занято уже приглашением, до принятия
	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "bob", models.TeamRoleMember))
	assert.ErrorIs(t, err, appErrors.ErrTeamLimitReached)
}

func TestTeamService_AcceptInvite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 3, 1)
	sub := env.seedSubscription(t, "acc-1", plan)

	member, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)

	require.NoError(t, env.team.AcceptInvite("acc-1", member.ID))

	stored, err := env.teamRepo.FindByID(member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberStatusActive, stored.Status)

	// Принятие не двигает счетчик - место занято с момента приглашения
	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageSnapshot.TeamMembersAdded)

	// Повторное принятие - конфликт
	err = env.team.AcceptInvite("acc-1", member.ID)
	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeConflict, appErr.Code)
}

func TestTeamService_RemoveReleasesSeat(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "small", 10, 100, 1, 0)
	sub := env.seedSubscription(t, "acc-1", plan)

	member, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)

	require.NoError(t, env.team.RemoveTeamMember("acc-1", member.ID))

	updated, err := env.subscriptionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageSnapshot.TeamMembersAdded)

	// Освободившееся место можно занять снова
	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "bob", models.TeamRoleMember))
	require.NoError(t, err)
}

func TestTeamService_ForeignAccountMemberInvisible(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 3, 1)
	env.seedSubscription(t, "acc-1", plan)
	env.seedSubscription(t, "acc-2", plan)

	member, err := env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)

	assert.ErrorIs(t, env.team.AcceptInvite("acc-2", member.ID), appErrors.ErrTeamMemberNotFound)
	assert.ErrorIs(t, env.team.RemoveTeamMember("acc-2", member.ID), appErrors.ErrTeamMemberNotFound)

	// Запись нетронута
	stored, err := env.teamRepo.FindByID(member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberStatusInvited, stored.Status)
}

func TestTeamService_ListTeamGroupsByRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 5, 2)
	env.seedSubscription(t, "acc-1", plan)

	_, err := env.team.AddTeamMember(addMemberRequest("acc-1", "kim", models.TeamRoleManager))
	require.NoError(t, err)
	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "ann", models.TeamRoleMember))
	require.NoError(t, err)
	_, err = env.team.AddTeamMember(addMemberRequest("acc-1", "bob", models.TeamRoleMember))
	require.NoError(t, err)

	team, err := env.team.ListTeam("acc-1")
	require.NoError(t, err)
	require.Len(t, team, 3)
	// Сначала участники, затем менеджеры
	assert.Equal(t, models.TeamRoleMember, team[0].Role)
	assert.Equal(t, models.TeamRoleMember, team[1].Role)
	assert.Equal(t, models.TeamRoleManager, team[2].Role)
}

func TestTeamService_ConcurrentAddsRespectQuota(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 10, 100, 3, 0)
	env.seedSubscription(t, "acc-1", plan)

	const attempts = 10
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func(n int) {
			_, err := env.team.AddTeamMember(addMemberRequest("acc-1", fmt.Sprintf("user%d", n), models.TeamRoleMember))
			errCh <- err
		}(i)
	}

	succeeded := 0
	for i := 0; i < attempts; i++ {
		if err := <-errCh; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, appErrors.ErrTeamLimitReached)
		}
	}
	assert.Equal(t, 3, succeeded)

	count, err := env.teamRepo.CountByAccountRole("acc-1", models.TeamRoleMember)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
