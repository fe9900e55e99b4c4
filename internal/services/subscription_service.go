package services

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/config"
	"hirehub_backend/internal/email"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Окно на оплату выставленного счета
const invoiceTTL = 24 * time.Hour

type SubscriptionService interface {
	GetPlans() ([]models.SubscriptionPlan, error)
	GetPlan(name string) (*models.SubscriptionPlan, error)
	CreatePlan(adminID string, req *dto.CreatePlanRequest) (*models.SubscriptionPlan, error)
	UpdatePlan(adminID, planID string, req *dto.UpdatePlanRequest) error
	DeactivatePlan(adminID, planID string) error

	Subscribe(accountID string, req *dto.SubscribeRequest) (*dto.PaymentResponse, error)
	ProcessPaymentCallback(data *dto.PaymentCallbackData) error
	CancelSubscription(accountID string) error
	GetUsageStats(accountID string) (*dto.UsageStatsResponse, error)
	GetPaymentHistory(accountID string) ([]models.PaymentTransaction, error)

	// Фоновые операции, вызываются воркером
	ProcessExpiredSubscriptions() error
	NotifyExpiringSubscriptions() error
}

type subscriptionService struct {
	subscriptionRepo   repositories.SubscriptionRepository
	planRepo           repositories.PlanRepository
	paymentRepo        repositories.PaymentRepository
	userRepo           repositories.UserRepository
	notificationRepo   repositories.NotificationRepository
	quotaService       QuotaService
	enforcementService EnforcementService
	emailProvider      email.Provider
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	planRepo repositories.PlanRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	quotaService QuotaService,
	enforcementService EnforcementService,
	emailProvider email.Provider,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo:   subscriptionRepo,
		planRepo:           planRepo,
		paymentRepo:        paymentRepo,
		userRepo:           userRepo,
		notificationRepo:   notificationRepo,
		quotaService:       quotaService,
		enforcementService: enforcementService,
		emailProvider:      emailProvider,
	}
}

func (s *subscriptionService) GetPlans() ([]models.SubscriptionPlan, error) {
	return s.planRepo.FindActivePlans()
}

func (s *subscriptionService) GetPlan(name string) (*models.SubscriptionPlan, error) {
	plan, err := s.planRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Subscribe выставляет счет на оплату выбранного плана.
// Бесплатный план активируется сразу, без платежного цикла
func (s *subscriptionService) Subscribe(accountID string, req *dto.SubscribeRequest) (*dto.PaymentResponse, error) {
	plan, err := s.GetPlan(req.PlanName)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, appErrors.ErrPlanNotFound
	}

	if plan.Price == 0 {
		if err := s.activatePlan(accountID, plan, ""); err != nil {
			return nil, err
		}
		return &dto.PaymentResponse{
			Amount:   0,
			Currency: plan.Currency,
			Status:   string(models.PaymentStatusPaid),
		}, nil
	}

	method := req.Method
	if method == "" {
		method = "card"
	}

	payment := &models.PaymentTransaction{
		AccountID: accountID,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Currency:  plan.Currency,
		Method:    method,
		Status:    models.PaymentStatusPending,
		InvID:     newInvoiceID(),
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	return &dto.PaymentResponse{
		PaymentID: payment.ID,
		InvoiceID: payment.InvID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    string(payment.Status),
		ExpiresAt: time.Now().Add(invoiceTTL),
	}, nil
}

// ProcessPaymentCallback обрабатывает подтверждение оплаты от платежного
// сервиса. Сумма сверяется со счетом; при расхождении подписка не активируется
func (s *subscriptionService) ProcessPaymentCallback(data *dto.PaymentCallbackData) error {
	payment, err := s.paymentRepo.FindByInvID(data.InvID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return appErrors.ErrPaymentNotFound
		}
		return err
	}

	if payment.Status == models.PaymentStatusPaid {
		// Платежные сервисы повторяют колбеки, второй проход - no-op
		return nil
	}

	if math.Abs(payment.Amount-data.OutSum) > 0.01 {
		logger.Warn("payment amount mismatch",
			"inv_id", payment.InvID, "expected", payment.Amount, "got", data.OutSum)
		return appErrors.ErrInvalidPaymentAmount
	}

	now := time.Now()
	if err := s.paymentRepo.UpdateStatus(payment.InvID, models.PaymentStatusPaid, &now); err != nil {
		return err
	}

	plan, err := s.planRepo.FindByID(payment.PlanID)
	if err != nil {
		return err
	}

	return s.activatePlan(payment.AccountID, plan, payment.InvID)
}

// activatePlan заменяет текущую подписку новой и приводит ресурсы
// аккаунта к квотам нового плана
func (s *subscriptionService) activatePlan(accountID string, plan *models.SubscriptionPlan, invID string) error {
	newSub := &models.CompanySubscription{
		AccountID: accountID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, plan.PeriodDays),
		InvID:     invID,
	}

	if err := s.subscriptionRepo.Supersede(accountID, newSub); err != nil {
		return err
	}

	if invID != "" {
		if err := s.paymentRepo.LinkSubscription(invID, newSub.ID); err != nil {
			logger.Warn("failed to link payment to subscription", "inv_id", invID, "error", err)
		}
	}

	// Enforcer пересоберет счетчики с фактического состояния и поставит
	// на паузу все, что не влезает в новый план
	if _, err := s.enforcementService.EnforcePlanLimits(accountID); err != nil {
		logger.Error("enforcement after plan activation failed", "account_id", accountID, "error", err)
		return err
	}

	logger.Info("subscription activated", "account_id", accountID, "plan", plan.Name)
	return nil
}

// CancelSubscription отменяет текущую подписку, аккаунт откатывается
// на бесплатный план с немедленным приведением ресурсов к его квотам
func (s *subscriptionService) CancelSubscription(accountID string) error {
	err := s.subscriptionRepo.Cancel(accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return appErrors.ErrSubscriptionNotFound
		}
		return err
	}

	if _, err := s.enforcementService.EnforcePlanLimits(accountID); err != nil {
		logger.Error("enforcement after cancellation failed", "account_id", accountID, "error", err)
		return err
	}
	return nil
}

func (s *subscriptionService) GetUsageStats(accountID string) (*dto.UsageStatsResponse, error) {
	sub, err := s.quotaService.ResolveSubscription(accountID)
	if err != nil {
		return nil, err
	}

	daysRemaining := int(time.Until(sub.EndDate).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return &dto.UsageStatsResponse{
		PlanName:      sub.Plan.Name,
		Status:        sub.Status,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		DaysRemaining: daysRemaining,

		ActiveJobs:   resourceUsage(sub.UsageSnapshot.ActiveJobs, sub.Plan.MaxActiveJobs),
		TeamMembers:  resourceUsage(sub.UsageSnapshot.TeamMembersAdded, sub.Plan.MaxTeamMembers),
		Managers:     resourceUsage(sub.UsageSnapshot.ManagersAdded, sub.Plan.MaxManagers),
		JobsPosted:   sub.UsageSnapshot.JobsPosted,
		Applications: sub.UsageSnapshot.TotalApplications,
	}, nil
}

func resourceUsage(used, limit int) dto.ResourceUsage {
	return dto.ResourceUsage{
		Used:      used,
		Limit:     limit,
		Unlimited: models.IsUnlimited(limit),
	}
}

func (s *subscriptionService) GetPaymentHistory(accountID string) ([]models.PaymentTransaction, error) {
	return s.paymentRepo.FindByAccount(accountID)
}

// ProcessExpiredSubscriptions помечает истекшие подписки и приводит
// ресурсы их аккаунтов к квотам бесплатного плана. Ошибка по одному
// аккаунту не останавливает проход
func (s *subscriptionService) ProcessExpiredSubscriptions() error {
	expired, err := s.subscriptionRepo.FindExpired()
	if err != nil {
		return err
	}

	for i := range expired {
		sub := &expired[i]
		if err := s.subscriptionRepo.MarkExpired(sub.ID); err != nil {
			logger.Error("failed to mark subscription expired", "subscription_id", sub.ID, "error", err)
			continue
		}
		if _, err := s.enforcementService.EnforcePlanLimits(sub.AccountID); err != nil {
			logger.Error("enforcement after expiry failed", "account_id", sub.AccountID, "error", err)
			continue
		}
		go s.notifyExpiry(sub.AccountID, sub.Plan.Name, 0)
	}

	return nil
}

func (s *subscriptionService) NotifyExpiringSubscriptions() error {
	days := config.GetConfig().Billing.ExpiringNotice
	expiring, err := s.subscriptionRepo.FindExpiring(days)
	if err != nil {
		return err
	}

	for i := range expiring {
		sub := &expiring[i]
		daysLeft := int(math.Ceil(time.Until(sub.EndDate).Hours() / 24))
		go s.notifyExpiry(sub.AccountID, sub.Plan.Name, daysLeft)
	}
	return nil
}

func (s *subscriptionService) notifyExpiry(accountID, planName string, daysLeft int) {
	if err := s.notificationRepo.CreateSubscriptionExpiringNotification(accountID, planName, daysLeft); err != nil {
		logger.Warn("failed to create expiry notification", "account_id", accountID, "error", err)
	}

	owner, err := s.userRepo.FindByID(accountID)
	if err != nil {
		return
	}
	err = s.emailProvider.SendTemplate(
		[]string{owner.Email},
		"Your subscription is expiring",
		email.TemplateSubscriptionExpiring,
		email.TemplateData{
			"Name":     owner.CompanyName,
			"PlanName": planName,
			"DaysLeft": daysLeft,
			"Expired":  daysLeft <= 0,
		},
	)
	if err != nil {
		logger.Warn("failed to send expiry email", "account_id", accountID, "error", err)
	}
}

// --- Администрирование планов ---

func (s *subscriptionService) CreatePlan(adminID string, req *dto.CreatePlanRequest) (*models.SubscriptionPlan, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	name := strings.ToLower(req.Name)
	if _, err := s.planRepo.FindByName(name); err == nil {
		return nil, appErrors.NewConflictError("Plan with this name already exists")
	} else if !errors.Is(err, repositories.ErrPlanNotFound) {
		return nil, err
	}

	features, _ := json.Marshal(req.Features)

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	plan := &models.SubscriptionPlan{
		Name:                  name,
		DisplayName:           req.DisplayName,
		Price:                 req.Price,
		Currency:              currency,
		PeriodDays:            req.PeriodDays,
		MaxActiveJobs:         req.MaxActiveJobs,
		MaxApplicationsPerJob: req.MaxApplicationsPerJob,
		JobValidityDays:       req.JobValidityDays,
		MaxTeamMembers:        req.MaxTeamMembers,
		MaxManagers:           req.MaxManagers,
		Features:              datatypes.JSON(features),
		IsActive:              req.IsActive,
	}

	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *subscriptionService) UpdatePlan(adminID, planID string, req *dto.UpdatePlanRequest) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}

	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return appErrors.ErrPlanNotFound
		}
		return err
	}

	if req.DisplayName != nil {
		plan.DisplayName = *req.DisplayName
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		plan.Currency = strings.ToUpper(*req.Currency)
	}
	if req.PeriodDays != nil {
		plan.PeriodDays = *req.PeriodDays
	}
	if req.MaxActiveJobs != nil {
		plan.MaxActiveJobs = *req.MaxActiveJobs
	}
	if req.MaxApplicationsPerJob != nil {
		plan.MaxApplicationsPerJob = *req.MaxApplicationsPerJob
	}
	if req.JobValidityDays != nil {
		plan.JobValidityDays = *req.JobValidityDays
	}
	if req.MaxTeamMembers != nil {
		plan.MaxTeamMembers = *req.MaxTeamMembers
	}
	if req.MaxManagers != nil {
		plan.MaxManagers = *req.MaxManagers
	}
	if req.Features != nil {
		features, _ := json.Marshal(req.Features)
		plan.Features = datatypes.JSON(features)
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	// Квоты поменялись - действующие подписчики получат новые лимиты
	// при следующем проходе enforcer'а
	return s.planRepo.Update(plan)
}

func (s *subscriptionService) DeactivatePlan(adminID, planID string) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}
	return s.planRepo.Deactivate(planID)
}

func (s *subscriptionService) requireAdmin(userID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return err
	}
	if user.Role != models.UserRoleAdmin {
		return appErrors.ErrInsufficientPermissions
	}
	return nil
}

func newInvoiceID() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:13])
}
