package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hirehub_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	FindUserNotifications(userID string, limit, offset int) ([]models.Notification, int64, error)
	MarkAsRead(notificationID string) error
	GetUnreadCount(userID string) (int64, error)

	// Доменные помощники для событий движка квот
	CreateJobApprovedNotification(posterID, jobID, jobTitle string) error
	CreateJobRejectedNotification(posterID, jobID, jobTitle, reason string) error
	CreateLimitReachedNotification(accountID, resource string, limit int) error
	CreateJobsPausedNotification(accountID string, count int) error
	CreateSubscriptionExpiringNotification(accountID, planName string, daysLeft int) error
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindUserNotifications(userID string, limit, offset int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(notificationID string) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) CreateJobApprovedNotification(posterID, jobID, jobTitle string) error {
	data, _ := json.Marshal(map[string]string{"job_id": jobID})
	return r.CreateNotification(&models.Notification{
		UserID:  posterID,
		Type:    models.NotificationJobApproved,
		Title:   "Job approved",
		Message: fmt.Sprintf("Your job posting %q has been approved and is now live", jobTitle),
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateJobRejectedNotification(posterID, jobID, jobTitle, reason string) error {
	data, _ := json.Marshal(map[string]string{"job_id": jobID, "reason": reason})
	return r.CreateNotification(&models.Notification{
		UserID:  posterID,
		Type:    models.NotificationJobRejected,
		Title:   "Job rejected",
		Message: fmt.Sprintf("Your job posting %q was rejected: %s", jobTitle, reason),
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateLimitReachedNotification(accountID, resource string, limit int) error {
	data, _ := json.Marshal(map[string]interface{}{"resource": resource, "limit": limit})
	return r.CreateNotification(&models.Notification{
		UserID:  accountID,
		Type:    models.NotificationLimitReached,
		Title:   "Plan limit reached",
		Message: fmt.Sprintf("You have reached the %s limit (%d) of your current plan", resource, limit),
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateJobsPausedNotification(accountID string, count int) error {
	data, _ := json.Marshal(map[string]interface{}{"count": count})
	return r.CreateNotification(&models.Notification{
		UserID:  accountID,
		Type:    models.NotificationJobPaused,
		Title:   "Jobs paused",
		Message: fmt.Sprintf("%d of your job postings were paused because they exceed your current plan limits", count),
		Data:    datatypes.JSON(data),
	})
}

func (r *NotificationRepositoryImpl) CreateSubscriptionExpiringNotification(accountID, planName string, daysLeft int) error {
	data, _ := json.Marshal(map[string]interface{}{"plan": planName, "days_left": daysLeft})

	notificationType := models.NotificationSubscriptionExpiring
	message := fmt.Sprintf("Your %s subscription expires in %d days", planName, daysLeft)
	if daysLeft <= 0 {
		notificationType = models.NotificationSubscriptionExpired
		message = fmt.Sprintf("Your %s subscription has expired", planName)
	}

	return r.CreateNotification(&models.Notification{
		UserID:  accountID,
		Type:    notificationType,
		Title:   "Subscription status",
		Message: message,
		Data:    datatypes.JSON(data),
	})
}
