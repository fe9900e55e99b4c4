package models

import (
	"time"
)

// UsageField - имя счетчика в снапшоте использования подписки
type UsageField string

const (
	UsageJobsPosted        UsageField = "jobs_posted"
	UsageActiveJobs        UsageField = "active_jobs"
	UsageTotalApplications UsageField = "total_applications"
	UsageTeamMembers       UsageField = "team_members_added"
	UsageManagers          UsageField = "managers_added"
)

// UsageSnapshot - счетчики потребленной квоты.
// Хранится плоскими integer-колонками, чтобы коммит квоты был
// одним условным UPDATE по строке подписки
type UsageSnapshot struct {
	JobsPosted        int `gorm:"not null;default:0" json:"jobs_posted"`
	ActiveJobs        int `gorm:"not null;default:0" json:"active_jobs"`
	TotalApplications int `gorm:"not null;default:0" json:"total_applications"`
	TeamMembersAdded  int `gorm:"not null;default:0" json:"team_members_added"`
	ManagersAdded     int `gorm:"not null;default:0" json:"managers_added"`
}

// Get возвращает значение счетчика по имени поля
func (u UsageSnapshot) Get(field UsageField) int {
	switch field {
	case UsageJobsPosted:
		return u.JobsPosted
	case UsageActiveJobs:
		return u.ActiveJobs
	case UsageTotalApplications:
		return u.TotalApplications
	case UsageTeamMembers:
		return u.TeamMembersAdded
	case UsageManagers:
		return u.ManagersAdded
	}
	return 0
}

// CompanySubscription - подписка аккаунта компании.
// Инвариант: не более одной записи со статусом active на аккаунт
type CompanySubscription struct {
	BaseModel
	AccountID   string             `gorm:"type:uuid;not null;index"`
	PlanID      string             `gorm:"type:uuid;not null;index"`
	Status      SubscriptionStatus `gorm:"default:'active';index"`
	StartDate   time.Time
	EndDate     time.Time
	InvID       string `gorm:"index"` // номер счета платежного провайдера
	CancelledAt *time.Time

	UsageSnapshot

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID"`
}

// IsExpiredAt проверяет, истекло ли окно действия подписки
func (s *CompanySubscription) IsExpiredAt(now time.Time) bool {
	return !s.EndDate.After(now)
}

// QuotaFor возвращает квоту плана для счетчика использования
func (p *SubscriptionPlan) QuotaFor(field UsageField) int {
	switch field {
	case UsageActiveJobs:
		return p.MaxActiveJobs
	case UsageTeamMembers:
		return p.MaxTeamMembers
	case UsageManagers:
		return p.MaxManagers
	case UsageTotalApplications, UsageJobsPosted:
		// Суммарные счетчики не ограничены планом, ограничение
		// на отклики действует на уровне вакансии
		return QuotaUnlimited
	}
	return 0
}
