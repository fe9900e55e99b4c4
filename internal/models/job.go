package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job - вакансия компании.
// Инвариант: Visibility = true только при ApprovalStatus = approved и Status = active.
// Вакансия учитывается в счетчике active_jobs тогда и только тогда, когда Status = active.
// Движок никогда не удаляет вакансии, только закрывает или помечает истекшими
type Job struct {
	BaseModel
	AccountID   string `gorm:"type:uuid;not null;index"`
	Title       string `gorm:"not null"`
	Description string
	City        string
	SalaryMin   *float64
	SalaryMax   *float64
	JobType     string
	Categories  datatypes.JSON `gorm:"type:jsonb"`

	ApprovalStatus JobApprovalStatus `gorm:"default:'pending';index"`
	Status         JobStatus         `gorm:"default:'paused';index"`
	Visibility     bool              `gorm:"default:false"`

	// Кто разместил вакансию: владелец аккаунта или участник команды
	PostedByID    string        `gorm:"type:uuid;not null"`
	PostedByModel PostedByModel `gorm:"not null"`

	// Провенанс паузы: enforcer возобновляет только то, что сам приостановил
	PausedBy PausedBy `gorm:"default:''"`

	ApprovedBy      *string `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string

	// Счетчик откликов на вакансию, ограничен max_applications_per_job плана
	ApplicationCount int `gorm:"not null;default:0"`

	ExpiresAt *time.Time `gorm:"index"`
}

// IsTerminal - закрытые, отклоненные и истекшие вакансии enforcer не трогает
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusClosed, JobStatusExpired, JobStatusRejected:
		return true
	}
	return false
}
