package models

import (
	"time"

	"gorm.io/datatypes"
)

// Типы уведомлений движка
const (
	NotificationJobApproved          = "job_approved"
	NotificationJobRejected          = "job_rejected"
	NotificationJobPaused            = "job_paused"
	NotificationLimitReached         = "limit_reached"
	NotificationSubscriptionExpiring = "subscription_expiring"
	NotificationSubscriptionExpired  = "subscription_expired"
)

type Notification struct {
	BaseModel
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"not null"` // "job_approved", "job_rejected", "limit_reached", ...
	Title   string `gorm:"not null"`
	Message string
	Data    datatypes.JSON `gorm:"type:jsonb"` // {"job_id": "...", "plan": "..."}
	IsRead  bool           `gorm:"default:false"`
	ReadAt  *time.Time
}
