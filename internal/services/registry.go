package services

import (
	"hirehub_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	QuotaService        QuotaService
	EnforcementService  EnforcementService
	JobService          JobService
	TeamService         TeamService
	SubscriptionService SubscriptionService
	EmailService        email.Provider
}
