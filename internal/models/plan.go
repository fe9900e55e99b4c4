package models

import (
	"gorm.io/datatypes"
)

// QuotaUnlimited - явный маркер "без ограничений" для полей квот.
// Квота либо неотрицательное число, либо этот маркер, никогда не NULL
const QuotaUnlimited = -1

type SubscriptionPlan struct {
	BaseModel
	Name        string  `gorm:"uniqueIndex;not null"`
	DisplayName string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	Currency    string  `gorm:"default:'USD'"`
	PeriodDays  int     `gorm:"not null"` // длительность биллинг-периода в днях

	// Квоты плана
	MaxActiveJobs         int `gorm:"not null;default:0"`
	MaxApplicationsPerJob int `gorm:"not null;default:0"`
	JobValidityDays       int `gorm:"not null;default:30"`
	MaxTeamMembers        int `gorm:"not null;default:0"`
	MaxManagers           int `gorm:"not null;default:0"`

	Features datatypes.JSON `gorm:"type:jsonb"` // {"priority_support": true, "featured_jobs": false, "analytics": false}
	IsActive bool           `gorm:"default:true"`
}

// PlanFeatures - типизированное представление флагов Features
type PlanFeatures struct {
	PrioritySupport bool `json:"priority_support"`
	FeaturedJobs    bool `json:"featured_jobs"`
	Analytics       bool `json:"analytics"`
}

// IsUnlimited проверяет, что квота не ограничена
func IsUnlimited(quota int) bool {
	return quota == QuotaUnlimited
}

// WithinQuota проверяет, что использование поместится в квоту после инкремента на delta
func WithinQuota(quota, used, delta int) bool {
	if IsUnlimited(quota) {
		return true
	}
	return used+delta <= quota
}
