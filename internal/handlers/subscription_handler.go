package handlers

import (
	"net/http"

	"hirehub_backend/internal/auth"
	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/services"
	"hirehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Публичная информация о планах
	plans := r.Group("/plans")
	{
		plans.GET("", h.GetPlans)
		plans.GET("/:planName", h.GetPlan)
	}

	// Webhook платежного сервиса
	r.POST("/payments/callback", h.PaymentCallback)

	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		canManage := middleware.RequirePermission(func(p auth.Permissions) bool { return p.CanManageSubscription })
		subscriptions.POST("/subscribe", canManage, h.Subscribe)
		subscriptions.PUT("/cancel", canManage, h.CancelSubscription)
		subscriptions.GET("/usage", h.GetUsageStats)
		subscriptions.GET("/payments", h.GetPaymentHistory)
	}

	admin := r.Group("/admin/plans")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreatePlan)
		admin.PUT("/:planId", h.UpdatePlan)
		admin.DELETE("/:planId", h.DeactivatePlan)
	}
}

func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	plans, err := h.subscriptionService.GetPlans()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	plan, err := h.subscriptionService.GetPlan(c.Param("planName"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.Subscribe(accountID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// PaymentCallback - webhook платежного сервиса, без аутентификации
func (h *SubscriptionHandler) PaymentCallback(c *gin.Context) {
	var data dto.PaymentCallbackData
	if !h.BindAndValidateJSON(c, &data) {
		return
	}

	if err := h.subscriptionService.ProcessPaymentCallback(&data); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.CancelSubscription(accountID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled"})
}

func (h *SubscriptionHandler) GetUsageStats(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	stats, err := h.subscriptionService.GetUsageStats(accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *SubscriptionHandler) GetPaymentHistory(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	payments, err := h.subscriptionService.GetPaymentHistory(accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// --- Администрирование планов ---

func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	plan, err := h.subscriptionService.CreatePlan(middleware.UserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.subscriptionService.UpdatePlan(middleware.UserID(c), c.Param("planId"), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan updated"})
}

func (h *SubscriptionHandler) DeactivatePlan(c *gin.Context) {
	if err := h.subscriptionService.DeactivatePlan(middleware.UserID(c), c.Param("planId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated"})
}
