package models

type UserStatus string
type UserRole string
type JobStatus string
type JobApprovalStatus string
type TeamMemberRole string
type TeamMemberStatus string
type SubscriptionStatus string
type PaymentStatus string
type PostedByModel string
type PausedBy string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleCompany UserRole = "company"
	UserRoleAdmin   UserRole = "admin"

	JobStatusActive   JobStatus = "active"
	JobStatusPaused   JobStatus = "paused"
	JobStatusClosed   JobStatus = "closed"
	JobStatusExpired  JobStatus = "expired"
	JobStatusRejected JobStatus = "rejected"

	JobApprovalPending  JobApprovalStatus = "pending"
	JobApprovalApproved JobApprovalStatus = "approved"
	JobApprovalRejected JobApprovalStatus = "rejected"

	TeamRoleMember  TeamMemberRole = "team_member"
	TeamRoleManager TeamMemberRole = "manager"

	TeamMemberStatusInvited TeamMemberStatus = "invited"
	TeamMemberStatusActive  TeamMemberStatus = "active"
	TeamMemberStatusPaused  TeamMemberStatus = "paused"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	// Кто создал вакансию: владелец аккаунта или участник команды
	PostedByOwner      PostedByModel = "owner"
	PostedByTeamMember PostedByModel = "team_member"

	// Кто поставил сущность на паузу. Enforcer возобновляет только свои паузы
	PausedByNone     PausedBy = ""
	PausedByOwner    PausedBy = "owner"
	PausedByEnforcer PausedBy = "enforcer"
)
