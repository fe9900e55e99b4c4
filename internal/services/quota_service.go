package services

import (
	"errors"
	"time"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/config"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
)

// AdmissionAction - намерение, которое проверяется против квот плана
type AdmissionAction string

const (
	ActionCreateJob     AdmissionAction = "create_job"
	ActionAddTeamMember AdmissionAction = "add_team_member"
	ActionAddManager    AdmissionAction = "add_manager"
)

// AdmissionActionForRole сопоставляет роль участника команды действию допуска
func AdmissionActionForRole(role models.TeamMemberRole) AdmissionAction {
	if role == models.TeamRoleManager {
		return ActionAddManager
	}
	return ActionAddTeamMember
}

// UsageFieldForRole возвращает счетчик, который потребляет участник с данной ролью
func UsageFieldForRole(role models.TeamMemberRole) models.UsageField {
	if role == models.TeamRoleManager {
		return models.UsageManagers
	}
	return models.UsageTeamMembers
}

// QuotaService - единая точка входа для допуска по квотам и мутации счетчиков.
// Допуск (CheckAdmission) - только чтение и всегда advisory: настоящая гонка
// разрешается условным инкрементом в CommitUsage, который перепроверяет
// лимит на стороне хранилища
type QuotaService interface {
	// ResolveSubscription возвращает действующую подписку аккаунта.
	// Если активной нет (включая только что истекшую) - лениво создает
	// подписку на бесплатный план со счетчиками, снятыми с ground truth.
	// ErrNoSubscription только если не разрешается даже бесплатный план
	ResolveSubscription(accountID string) (*models.CompanySubscription, error)

	// CheckAdmission решает admit/deny, не мутируя ничего.
	// При допуске возвращает подписку для последующего коммита
	CheckAdmission(accountID string, action AdmissionAction) (*models.CompanySubscription, error)

	// CommitUsage - атомарный условный инкремент после успешного создания сущности.
	// Проигранная гонка возвращается тем же *LimitReached, что и отказ допуска
	CommitUsage(subscriptionID string, field models.UsageField, delta int) error

	// ReleaseUsage - декремент при удалении/закрытии сущности.
	// Никогда не падает из-за квот, счетчик отсекается в ноле
	ReleaseUsage(subscriptionID string, field models.UsageField, delta int) error
}

type quotaService struct {
	subscriptionRepo repositories.SubscriptionRepository
	planRepo         repositories.PlanRepository
	jobRepo          repositories.JobRepository
	teamRepo         repositories.TeamMemberRepository
}

func NewQuotaService(
	subscriptionRepo repositories.SubscriptionRepository,
	planRepo repositories.PlanRepository,
	jobRepo repositories.JobRepository,
	teamRepo repositories.TeamMemberRepository,
) QuotaService {
	return &quotaService{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		jobRepo:          jobRepo,
		teamRepo:         teamRepo,
	}
}

func (s *quotaService) ResolveSubscription(accountID string) (*models.CompanySubscription, error) {
	sub, err := s.subscriptionRepo.FindActiveByAccount(accountID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, err
	}

	// Активной подписки нет: откат на бесплатный план.
	// Истекшая подписка сюда тоже попадает - она не должна молча
	// продолжать выдавать квоты старого плана
	freePlanName := config.GetConfig().Billing.FreePlanName
	plan, err := s.planRepo.FindByName(freePlanName)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrNoSubscription
		}
		return nil, err
	}

	snapshot, err := s.currentUsage(accountID)
	if err != nil {
		return nil, err
	}

	newSub := &models.CompanySubscription{
		AccountID:     accountID,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusActive,
		StartDate:     time.Now(),
		EndDate:       time.Now().AddDate(0, 0, plan.PeriodDays),
		UsageSnapshot: snapshot,
	}

	if err := s.subscriptionRepo.Supersede(accountID, newSub); err != nil {
		return nil, err
	}

	newSub.Plan = *plan
	return newSub, nil
}

func (s *quotaService) CheckAdmission(accountID string, action AdmissionAction) (*models.CompanySubscription, error) {
	sub, err := s.ResolveSubscription(accountID)
	if err != nil {
		return nil, err
	}

	var field models.UsageField
	switch action {
	case ActionCreateJob:
		field = models.UsageActiveJobs
	case ActionAddTeamMember:
		field = models.UsageTeamMembers
	case ActionAddManager:
		field = models.UsageManagers
	default:
		return nil, appErrors.NewBadRequestError("unknown admission action")
	}

	quota := sub.Plan.QuotaFor(field)
	used := sub.UsageSnapshot.Get(field)

	if !models.WithinQuota(quota, used, 1) {
		return nil, appErrors.LimitReached(limitErrorFor(field), quota, used)
	}

	return sub, nil
}

func (s *quotaService) CommitUsage(subscriptionID string, field models.UsageField, delta int) error {
	sub, err := s.subscriptionRepo.FindByID(subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return appErrors.ErrSubscriptionNotFound
		}
		return err
	}

	limit := sub.Plan.QuotaFor(field)

	ok, err := s.subscriptionRepo.TryIncrementUsage(subscriptionID, field, delta, limit)
	if err != nil {
		return err
	}
	if !ok {
		// Условный UPDATE отклонен: между advisory-проверкой и коммитом
		// кто-то успел занять последний слот
		return appErrors.LimitReached(limitErrorFor(field), limit, sub.UsageSnapshot.Get(field))
	}
	return nil
}

func (s *quotaService) ReleaseUsage(subscriptionID string, field models.UsageField, delta int) error {
	err := s.subscriptionRepo.DecrementUsage(subscriptionID, field, delta)
	if errors.Is(err, repositories.ErrSubscriptionNotFound) {
		// Подписка могла быть заменена между операциями, удаление
		// сущности из-за этого не откатывается
		return nil
	}
	return err
}

// currentUsage снимает счетчики с фактической популяции сущностей аккаунта
func (s *quotaService) currentUsage(accountID string) (models.UsageSnapshot, error) {
	var snapshot models.UsageSnapshot

	jobsPosted, err := s.jobRepo.CountByAccount(accountID)
	if err != nil {
		return snapshot, err
	}
	activeJobs, err := s.jobRepo.CountByAccountStatus(accountID, models.JobStatusActive)
	if err != nil {
		return snapshot, err
	}
	applications, err := s.jobRepo.SumApplications(accountID)
	if err != nil {
		return snapshot, err
	}
	teamMembers, err := s.teamRepo.CountByAccountRole(accountID, models.TeamRoleMember)
	if err != nil {
		return snapshot, err
	}
	managers, err := s.teamRepo.CountByAccountRole(accountID, models.TeamRoleManager)
	if err != nil {
		return snapshot, err
	}

	snapshot.JobsPosted = int(jobsPosted)
	snapshot.ActiveJobs = int(activeJobs)
	snapshot.TotalApplications = int(applications)
	snapshot.TeamMembersAdded = int(teamMembers)
	snapshot.ManagersAdded = int(managers)
	return snapshot, nil
}

// limitErrorFor сопоставляет счетчик типизированному отказу по квоте
func limitErrorFor(field models.UsageField) *appErrors.AppError {
	switch field {
	case models.UsageTeamMembers:
		return appErrors.ErrTeamLimitReached
	case models.UsageManagers:
		return appErrors.ErrManagerLimitReached
	default:
		return appErrors.ErrJobLimitReached
	}
}
