package validator

import (
	"log"

	"hirehub_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные функции валидации
// в переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка регистрации правила - критическая ошибка запуска
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-job-status", validateJobStatus)
	mustRegister("is-team-role", validateTeamRole)
	mustRegister("is-payment-status", validatePaymentStatus)
}

func validateJobStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	switch models.JobStatus(value) {
	case models.JobStatusActive, models.JobStatusPaused, models.JobStatusClosed:
		// expired и rejected выставляются только движком, не клиентом
		return true
	default:
		return false
	}
}

func validateTeamRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.TeamMemberRole(value) {
	case models.TeamRoleMember, models.TeamRoleManager:
		return true
	default:
		return false
	}
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PaymentStatus(value) {
	case models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	default:
		return false
	}
}
