package handlers

import (
	"net/http"
	"strconv"

	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationRepo repositories.NotificationRepository
}

func NewNotificationHandler(base *BaseHandler, notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:      base,
		notificationRepo: notificationRepo,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread", h.GetUnreadCount)
		notifications.PUT("/:notificationId/read", h.MarkAsRead)
	}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationRepo.FindUserNotifications(accountID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": total})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if _, ok := h.RequireAccountID(c); !ok {
		return
	}

	if err := h.notificationRepo.MarkAsRead(c.Param("notificationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	accountID, ok := h.RequireAccountID(c)
	if !ok {
		return
	}

	count, err := h.notificationRepo.GetUnreadCount(accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
