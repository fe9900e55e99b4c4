package auth

import (
	"errors"

	"hirehub_backend/internal/models"
)

// Permissions - набор возможностей вызывающего.
// Движок доверяет этим флагам вместо разбросанных проверок строковых ролей
type Permissions struct {
	CanManageJobs           bool
	CanApproveJobs          bool
	CanManageTeam           bool
	CanManageCompanyProfile bool
	CanManageSubscription   bool
}

// PermissionsForRole выводит набор возможностей из роли
func PermissionsForRole(role string) Permissions {
	switch role {
	case string(models.UserRoleCompany):
		// Владелец аккаунта: самоавторизуемые действия
		return Permissions{
			CanManageJobs:           true,
			CanApproveJobs:          true,
			CanManageTeam:           true,
			CanManageCompanyProfile: true,
			CanManageSubscription:   true,
		}
	case string(models.TeamRoleManager):
		// Модерация вакансий остается за владельцем аккаунта:
		// менеджер не одобряет размещения, в том числе свои
		return Permissions{
			CanManageJobs:           true,
			CanApproveJobs:          false,
			CanManageTeam:           true,
			CanManageCompanyProfile: false,
			CanManageSubscription:   false,
		}
	case string(models.TeamRoleMember):
		return Permissions{
			CanManageJobs: true,
		}
	case string(models.UserRoleAdmin):
		return Permissions{
			CanManageJobs:           true,
			CanApproveJobs:          true,
			CanManageTeam:           true,
			CanManageCompanyProfile: true,
			CanManageSubscription:   true,
		}
	}
	return Permissions{}
}

// IsOwner проверяет, действует ли вызывающий как владелец аккаунта
func IsOwner(claims *Claims) bool {
	return claims.Role == string(models.UserRoleCompany) && claims.UserID == claims.AccountID
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case string(models.UserRoleCompany), string(models.UserRoleAdmin),
		string(models.TeamRoleMember), string(models.TeamRoleManager):
		return nil
	default:
		return errors.New("invalid role")
	}
}
