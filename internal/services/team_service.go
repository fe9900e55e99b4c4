package services

import (
	"errors"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/email"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"
)

type TeamService interface {
	AddTeamMember(req *dto.AddTeamMemberRequest) (*models.TeamMember, error)
	AcceptInvite(accountID, memberID string) error
	RemoveTeamMember(accountID, memberID string) error
	ListTeam(accountID string) ([]models.TeamMember, error)
}

type teamService struct {
	teamRepo         repositories.TeamMemberRepository
	quotaService     QuotaService
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	emailProvider    email.Provider
}

func NewTeamService(
	teamRepo repositories.TeamMemberRepository,
	quotaService QuotaService,
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	emailProvider email.Provider,
) TeamService {
	return &teamService{
		teamRepo:         teamRepo,
		quotaService:     quotaService,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailProvider:    emailProvider,
	}
}

// AddTeamMember приглашает участника под квотой своей роли
// (max_team_members или max_managers). Приглашенный занимает место
// сразу, не дожидаясь принятия приглашения.
// Тот же протокол, что у вакансий: допуск -> создание -> условный
// коммит, компенсация и один повтор при проигранной гонке
func (s *teamService) AddTeamMember(req *dto.AddTeamMemberRequest) (*models.TeamMember, error) {
	role := models.TeamMemberRole(req.Role)
	action := AdmissionActionForRole(role)
	field := UsageFieldForRole(role)

	var lastErr error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		sub, err := s.quotaService.CheckAdmission(req.AccountID, action)
		if err != nil {
			s.notifyLimitIfReached(req.AccountID, role, err)
			return nil, err
		}

		member := &models.TeamMember{
			AccountID: req.AccountID,
			Name:      req.Name,
			Email:     req.Email,
			Role:      role,
			Status:    models.TeamMemberStatusInvited,
		}

		if err := s.teamRepo.Create(member); err != nil {
			return nil, err
		}

		if err := s.quotaService.CommitUsage(sub.ID, field, 1); err != nil {
			if delErr := s.teamRepo.Delete(member.ID); delErr != nil {
				logger.Error("failed to compensate team member creation", "member_id", member.ID, "error", delErr)
			}
			if appErr, ok := appErrors.AsAppError(err); ok && isTeamLimitCode(appErr.Code) {
				lastErr = err
				continue
			}
			return nil, err
		}

		go s.sendInviteEmail(member)
		return member, nil
	}

	s.notifyLimitIfReached(req.AccountID, role, lastErr)
	return nil, lastErr
}

func (s *teamService) sendInviteEmail(member *models.TeamMember) {
	companyName := "A company on HireHub"
	// У владельца аккаунта UserID совпадает с AccountID
	if owner, err := s.userRepo.FindByID(member.AccountID); err == nil {
		companyName = owner.CompanyName
	}

	err := s.emailProvider.SendTemplate(
		[]string{member.Email},
		"You have been invited to a hiring team",
		email.TemplateTeamInvite,
		email.TemplateData{
			"Name":        member.Name,
			"CompanyName": companyName,
			"Role":        string(member.Role),
		},
	)
	if err != nil {
		logger.Warn("failed to send team invite email", "member_id", member.ID, "error", err)
	}
}

// AcceptInvite переводит invited -> active. Место было занято при
// приглашении, счетчики не меняются
func (s *teamService) AcceptInvite(accountID, memberID string) error {
	member, err := s.findAccountMember(accountID, memberID)
	if err != nil {
		return err
	}
	if member.Status != models.TeamMemberStatusInvited {
		return appErrors.NewConflictError("Invitation is not pending")
	}
	return s.teamRepo.SetStatus(member.ID, models.TeamMemberStatusActive, models.PausedByNone)
}

// RemoveTeamMember удаляет участника и возвращает место его роли
func (s *teamService) RemoveTeamMember(accountID, memberID string) error {
	member, err := s.findAccountMember(accountID, memberID)
	if err != nil {
		return err
	}

	if err := s.teamRepo.Delete(member.ID); err != nil {
		return err
	}

	sub, err := s.quotaService.ResolveSubscription(accountID)
	if err != nil {
		logger.Warn("failed to resolve subscription for seat release", "member_id", memberID, "error", err)
		return nil
	}
	if err := s.quotaService.ReleaseUsage(sub.ID, UsageFieldForRole(member.Role), 1); err != nil {
		logger.Warn("failed to release team seat", "member_id", memberID, "error", err)
	}
	return nil
}

func (s *teamService) ListTeam(accountID string) ([]models.TeamMember, error) {
	members, err := s.teamRepo.FindByAccountRoleOrdered(accountID, models.TeamRoleMember)
	if err != nil {
		return nil, err
	}
	managers, err := s.teamRepo.FindByAccountRoleOrdered(accountID, models.TeamRoleManager)
	if err != nil {
		return nil, err
	}
	return append(members, managers...), nil
}

func (s *teamService) findAccountMember(accountID, memberID string) (*models.TeamMember, error) {
	member, err := s.teamRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return nil, appErrors.ErrTeamMemberNotFound
		}
		return nil, err
	}
	if member.AccountID != accountID {
		return nil, appErrors.ErrTeamMemberNotFound
	}
	return member, nil
}

func isTeamLimitCode(code appErrors.ErrorCode) bool {
	return code == appErrors.CodeTeamLimitReached || code == appErrors.CodeManagerLimitReached
}

func (s *teamService) notifyLimitIfReached(accountID string, role models.TeamMemberRole, err error) {
	appErr, ok := appErrors.AsAppError(err)
	if !ok || !isTeamLimitCode(appErr.Code) {
		return
	}
	resource := "team members"
	if role == models.TeamRoleManager {
		resource = "managers"
	}
	limit := -1
	if details, ok := appErr.Details.(appErrors.LimitDetails); ok {
		limit = details.Limit
	}
	go func() {
		if err := s.notificationRepo.CreateLimitReachedNotification(accountID, resource, limit); err != nil {
			logger.Warn("failed to create limit notification", "account_id", accountID, "error", err)
		}
	}()
}
