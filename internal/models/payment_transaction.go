package models

import "time"

type PaymentTransaction struct {
	BaseModel
	AccountID      string  `gorm:"type:uuid;not null;index"`
	PlanID         string  `gorm:"type:uuid;not null;index"`
	SubscriptionID *string `gorm:"type:uuid;index"` // заполняется после активации подписки
	Amount         float64
	Currency       string        `gorm:"default:'USD'"`
	Method         string        // "card", "invoice", ...
	Status         PaymentStatus `gorm:"default:'pending'"`
	InvID          string        `gorm:"uniqueIndex"`
	PaidAt         *time.Time

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID"`
}
