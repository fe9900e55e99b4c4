package services

import (
	"log/slog"
	"time"

	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"
)

// EnforcementService приводит ресурсы аккаунта в соответствие квотам
// текущего плана. Вызывается после смены/отмены/истечения подписки и
// периодически воркером как самовосстановление
type EnforcementService interface {
	EnforcePlanLimits(accountID string) (*dto.EnforcementSummary, error)
}

type enforcementService struct {
	quotaService     QuotaService
	subscriptionRepo repositories.SubscriptionRepository
	jobRepo          repositories.JobRepository
	teamRepo         repositories.TeamMemberRepository
	notificationRepo repositories.NotificationRepository
}

func NewEnforcementService(
	quotaService QuotaService,
	subscriptionRepo repositories.SubscriptionRepository,
	jobRepo repositories.JobRepository,
	teamRepo repositories.TeamMemberRepository,
	notificationRepo repositories.NotificationRepository,
) EnforcementService {
	return &enforcementService{
		quotaService:     quotaService,
		subscriptionRepo: subscriptionRepo,
		jobRepo:          jobRepo,
		teamRepo:         teamRepo,
		notificationRepo: notificationRepo,
	}
}

// EnforcePlanLimits - идемпотентный проход по вакансиям и команде аккаунта.
// Обход строго в порядке created_at ASC: при даунгрейде слоты достаются
// самым старым сущностям, ставятся на паузу самые свежие. При апгрейде
// возобновляются только сущности, приостановленные самим enforcer'ом -
// паузы владельца не трогаем. Ошибка по одной сущности логируется, проход
// продолжается; повторный запуск доделает остальное
func (s *enforcementService) EnforcePlanLimits(accountID string) (*dto.EnforcementSummary, error) {
	log := logger.GetLogger().With("account_id", accountID, "component", "enforcement")

	sub, err := s.quotaService.ResolveSubscription(accountID)
	if err != nil {
		return nil, err
	}

	summary := &dto.EnforcementSummary{}

	if err := s.enforceJobs(accountID, &sub.Plan, summary, log); err != nil {
		return nil, err
	}
	s.enforceTeam(accountID, models.TeamRoleMember, sub.Plan.MaxTeamMembers, summary, log)
	s.enforceTeam(accountID, models.TeamRoleManager, sub.Plan.MaxManagers, summary, log)

	// Счетчики пересобираются с фактического состояния, чтобы дрейф
	// (упавшие компенсации, ручные правки) не накапливался
	if err := s.resyncUsage(accountID, sub.ID); err != nil {
		return nil, err
	}

	if !summary.IsNoop() {
		log.Info("plan limits enforced",
			"jobs_paused", summary.JobsPaused,
			"jobs_resumed", summary.JobsResumed,
			"team_paused", summary.TeamMembersPaused,
			"team_resumed", summary.TeamMembersResumed,
		)
		if summary.JobsPaused > 0 {
			go s.notifyJobsPaused(accountID, summary.JobsPaused)
		}
	}

	return summary, nil
}

func (s *enforcementService) enforceJobs(accountID string, plan *models.SubscriptionPlan, summary *dto.EnforcementSummary, log *slog.Logger) error {
	jobs, err := s.jobRepo.FindByAccountOrdered(accountID)
	if err != nil {
		return err
	}

	max := plan.MaxActiveJobs
	now := time.Now()
	activeCount := 0

	for i := range jobs {
		job := &jobs[i]
		if job.IsTerminal() || job.ApprovalStatus != models.JobApprovalApproved {
			continue
		}

		switch job.Status {
		case models.JobStatusActive:
			if !models.IsUnlimited(max) && activeCount >= max {
				if err := s.jobRepo.SetRuntimeState(job.ID, models.JobStatusPaused, models.PausedByEnforcer, false); err != nil {
					log.Warn("failed to pause job over plan limit", "job_id", job.ID, "error", err)
					continue
				}
				summary.JobsPaused++
			} else {
				activeCount++
			}
		case models.JobStatusPaused:
			if job.PausedBy != models.PausedByEnforcer {
				continue
			}
			if job.ExpiresAt != nil && job.ExpiresAt.Before(now) {
				// Срок размещения вышел, пока вакансия стояла на паузе -
				// возобновлять нечего, финализирует job worker
				continue
			}
			if models.IsUnlimited(max) || activeCount < max {
				if err := s.jobRepo.SetRuntimeState(job.ID, models.JobStatusActive, models.PausedByNone, true); err != nil {
					log.Warn("failed to resume enforcer-paused job", "job_id", job.ID, "error", err)
					continue
				}
				summary.JobsResumed++
				activeCount++
			}
		}
	}

	return nil
}

func (s *enforcementService) enforceTeam(accountID string, role models.TeamMemberRole, max int, summary *dto.EnforcementSummary, log *slog.Logger) {
	members, err := s.teamRepo.FindByAccountRoleOrdered(accountID, role)
	if err != nil {
		log.Warn("failed to load team members for enforcement", "role", role, "error", err)
		return
	}

	seats := 0
	for i := range members {
		member := &members[i]
		switch member.Status {
		case models.TeamMemberStatusInvited, models.TeamMemberStatusActive:
			if !models.IsUnlimited(max) && seats >= max {
				if err := s.teamRepo.SetStatus(member.ID, models.TeamMemberStatusPaused, models.PausedByEnforcer); err != nil {
					log.Warn("failed to pause team member over plan limit", "member_id", member.ID, "error", err)
					continue
				}
				summary.TeamMembersPaused++
			} else {
				seats++
			}
		case models.TeamMemberStatusPaused:
			if member.PausedBy != models.PausedByEnforcer {
				continue
			}
			if models.IsUnlimited(max) || seats < max {
				if err := s.teamRepo.SetStatus(member.ID, models.TeamMemberStatusActive, models.PausedByNone); err != nil {
					log.Warn("failed to resume enforcer-paused team member", "member_id", member.ID, "error", err)
					continue
				}
				summary.TeamMembersResumed++
				seats++
			}
		}
	}
}

func (s *enforcementService) resyncUsage(accountID, subscriptionID string) error {
	var snapshot models.UsageSnapshot

	jobsPosted, err := s.jobRepo.CountByAccount(accountID)
	if err != nil {
		return err
	}
	activeJobs, err := s.jobRepo.CountByAccountStatus(accountID, models.JobStatusActive)
	if err != nil {
		return err
	}
	applications, err := s.jobRepo.SumApplications(accountID)
	if err != nil {
		return err
	}
	teamMembers, err := s.teamRepo.CountByAccountRole(accountID, models.TeamRoleMember)
	if err != nil {
		return err
	}
	managers, err := s.teamRepo.CountByAccountRole(accountID, models.TeamRoleManager)
	if err != nil {
		return err
	}

	snapshot.JobsPosted = int(jobsPosted)
	snapshot.ActiveJobs = int(activeJobs)
	snapshot.TotalApplications = int(applications)
	snapshot.TeamMembersAdded = int(teamMembers)
	snapshot.ManagersAdded = int(managers)

	return s.subscriptionRepo.SyncUsage(subscriptionID, snapshot)
}

func (s *enforcementService) notifyJobsPaused(accountID string, count int) {
	if err := s.notificationRepo.CreateJobsPausedNotification(accountID, count); err != nil {
		logger.Warn("failed to create jobs paused notification", "account_id", accountID, "error", err)
	}
}
