package services

import (
	"strings"
	"testing"
	"time"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedPaidPlan(t *testing.T, name string, price float64, maxActiveJobs int) *models.SubscriptionPlan {
	t.Helper()
	plan := &models.SubscriptionPlan{
		Name:            name,
		DisplayName:     name,
		Price:           price,
		Currency:        "USD",
		PeriodDays:      30,
		MaxActiveJobs:   maxActiveJobs,
		JobValidityDays: 30,
		MaxTeamMembers:  5,
		MaxManagers:     2,
		IsActive:        true,
	}
	require.NoError(t, e.planRepo.Create(plan))
	return plan
}

func (e *testEnv) seedUser(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:  string(role) + "@co.io",
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func TestSubscriptionService_FreePlanActivatesImmediately(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPlan(t, "free", 1, 30, 1, 0)

	resp, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "free"})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPaid), resp.Status)
	assert.Zero(t, resp.Amount)
	assert.Empty(t, resp.InvoiceID)

	sub, err := env.subscriptionRepo.FindActiveByAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Plan.Name)
}

func TestSubscriptionService_PaidPlanIssuesInvoice(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPaidPlan(t, "standard", 49, 10)

	resp, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "standard"})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPending), resp.Status)
	assert.Equal(t, 49.0, resp.Amount)
	assert.True(t, strings.HasPrefix(resp.InvoiceID, "INV-"))

	// До подтверждения оплаты подписки нет
	_, err = env.subscriptionRepo.FindActiveByAccount("acc-1")
	assert.Error(t, err)
}

func TestSubscriptionService_PaymentCallbackActivatesPlan(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPaidPlan(t, "standard", 49, 10)

	resp, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "standard"})
	require.NoError(t, err)

	err = env.subscription.ProcessPaymentCallback(&dto.PaymentCallbackData{InvID: resp.InvoiceID, OutSum: 49})
	require.NoError(t, err)

	sub, err := env.subscriptionRepo.FindActiveByAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "standard", sub.Plan.Name)

	payment, err := env.paymentRepo.FindByInvID(resp.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.SubscriptionID)
	assert.Equal(t, sub.ID, *payment.SubscriptionID)
}

func TestSubscriptionService_CallbackIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPaidPlan(t, "standard", 49, 10)

	resp, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "standard"})
	require.NoError(t, err)

	callback := &dto.PaymentCallbackData{InvID: resp.InvoiceID, OutSum: 49}
	require.NoError(t, env.subscription.ProcessPaymentCallback(callback))
	// Платежные сервисы ретраят колбеки
	require.NoError(t, env.subscription.ProcessPaymentCallback(callback))

	env.subscriptionRepo.mu.Lock()
	active := 0
	for _, sub := range env.subscriptionRepo.subs {
		if sub.AccountID == "acc-1" && sub.Status == models.SubscriptionStatusActive {
			active++
		}
	}
	env.subscriptionRepo.mu.Unlock()
	assert.Equal(t, 1, active)
}

func TestSubscriptionService_CallbackAmountMismatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPaidPlan(t, "standard", 49, 10)

	resp, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "standard"})
	require.NoError(t, err)

	err = env.subscription.ProcessPaymentCallback(&dto.PaymentCallbackData{InvID: resp.InvoiceID, OutSum: 10})
	assert.ErrorIs(t, err, appErrors.ErrInvalidPaymentAmount)

	payment, err := env.paymentRepo.FindByInvID(resp.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	_, err = env.subscriptionRepo.FindActiveByAccount("acc-1")
	assert.Error(t, err)
}

func TestSubscriptionService_SubscribeUnknownPlan(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.subscription.Subscribe("acc-1", &dto.SubscribeRequest{PlanName: "gold"})
	assert.ErrorIs(t, err, appErrors.ErrPlanNotFound)
}

func TestSubscriptionService_CancelFallsBackToFreeLimits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPlan(t, "free", 1, 30, 1, 0)
	paid := env.seedPaidPlan(t, "standard", 49, 10)
	env.seedSubscription(t, "acc-1", paid)

	env.seedActiveJob(t, "acc-1", "A")
	env.seedActiveJob(t, "acc-1", "B")
	env.seedActiveJob(t, "acc-1", "C")

	require.NoError(t, env.subscription.CancelSubscription("acc-1"))

	sub, err := env.subscriptionRepo.FindActiveByAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Plan.Name)

	// Бесплатный план вмещает одну активную вакансию, остальные на паузе
	active, err := env.jobRepo.CountByAccountStatus("acc-1", models.JobStatusActive)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)
}

func TestSubscriptionService_CancelWithoutSubscription(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	err := env.subscription.CancelSubscription("acc-1")
	assert.ErrorIs(t, err, appErrors.ErrSubscriptionNotFound)
}

func TestSubscriptionService_ExpiredSweepDowngradesAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedPlan(t, "free", 1, 30, 1, 0)
	paid := env.seedPaidPlan(t, "standard", 49, 10)

	stale := &models.CompanySubscription{
		AccountID: "acc-1",
		PlanID:    paid.ID,
		Status:    models.SubscriptionStatusActive,
		StartDate: time.Now().AddDate(0, -1, -1),
		EndDate:   time.Now().AddDate(0, 0, -1),
	}
	require.NoError(t, env.subscriptionRepo.Create(stale))

	env.seedActiveJob(t, "acc-1", "A")
	env.seedActiveJob(t, "acc-1", "B")

	require.NoError(t, env.subscription.ProcessExpiredSubscriptions())

	expired, err := env.subscriptionRepo.FindByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, expired.Status)

	// Аккаунт пересажен на бесплатный план с его квотами
	sub, err := env.subscriptionRepo.FindActiveByAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Plan.Name)

	active, err := env.jobRepo.CountByAccountStatus("acc-1", models.JobStatusActive)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)
}

func TestSubscriptionService_UsageStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	plan := env.seedPlan(t, "standard", 5, 100, 3, models.QuotaUnlimited)
	env.seedSubscription(t, "acc-1", plan)

	env.seedActiveJob(t, "acc-1", "A")
	_, err := env.enforcement.EnforcePlanLimits("acc-1")
	require.NoError(t, err)

	stats, err := env.subscription.GetUsageStats("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "standard", stats.PlanName)
	assert.Equal(t, 1, stats.ActiveJobs.Used)
	assert.Equal(t, 5, stats.ActiveJobs.Limit)
	assert.False(t, stats.ActiveJobs.Unlimited)
	assert.True(t, stats.Managers.Unlimited)
	assert.Equal(t, 28, stats.DaysRemaining)
}

func TestSubscriptionService_PlanAdministrationRequiresAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.seedUser(t, models.UserRoleCompany)
	admin := env.seedUser(t, models.UserRoleAdmin)

	req := &dto.CreatePlanRequest{
		Name:            "Growth",
		DisplayName:     "Growth",
		Price:           99,
		Currency:        "usd",
		PeriodDays:      30,
		MaxActiveJobs:   20,
		JobValidityDays: 30,
		MaxTeamMembers:  10,
		MaxManagers:     3,
		IsActive:        true,
	}

	_, err := env.subscription.CreatePlan(company.ID, req)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	plan, err := env.subscription.CreatePlan(admin.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "growth", plan.Name)
	assert.Equal(t, "USD", plan.Currency)

	// Повторное имя - конфликт
	_, err = env.subscription.CreatePlan(admin.ID, req)
	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeConflict, appErr.Code)
}
