package models

// TeamMember - участник команды компании.
// Учитывается в team_members_added или managers_added по роли,
// пока запись существует. Жесткое удаление обязано декрементировать счетчик
type TeamMember struct {
	BaseModel
	AccountID string           `gorm:"type:uuid;not null;index"`
	Name      string           `gorm:"not null"`
	Email     string           `gorm:"not null;index"`
	Role      TeamMemberRole   `gorm:"not null;index"`
	Status    TeamMemberStatus `gorm:"default:'invited'"`

	// Провенанс паузы, аналогично Job
	PausedBy PausedBy `gorm:"default:''"`
}

// OccupiesSeat - приостановленные участники не занимают слот активного лимита,
// но продолжают учитываться в счетчике добавленных
func (m *TeamMember) OccupiesSeat() bool {
	return m.Status == TeamMemberStatusInvited || m.Status == TeamMemberStatusActive
}
