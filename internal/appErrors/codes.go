package appErrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	CodeInvalidUserRole  ErrorCode = "INVALID_USER_ROLE"

	// Ресурсы
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeJobNotFound          ErrorCode = "JOB_NOT_FOUND"
	CodeTeamMemberNotFound   ErrorCode = "TEAM_MEMBER_NOT_FOUND"
	CodePlanNotFound         ErrorCode = "PLAN_NOT_FOUND"
	CodeSubscriptionNotFound ErrorCode = "SUBSCRIPTION_NOT_FOUND"
	CodePaymentNotFound      ErrorCode = "PAYMENT_NOT_FOUND"

	// Подписки и квоты
	CodeNoSubscription          ErrorCode = "NO_SUBSCRIPTION"
	CodeJobLimitReached         ErrorCode = "JOB_LIMIT_REACHED"
	CodeTeamLimitReached        ErrorCode = "TEAM_LIMIT_REACHED"
	CodeManagerLimitReached     ErrorCode = "MANAGER_LIMIT_REACHED"
	CodeApplicationLimitReached ErrorCode = "APPLICATION_LIMIT_REACHED"
	CodeSubscriptionCancelled   ErrorCode = "SUBSCRIPTION_CANCELLED"

	// Жизненный цикл вакансий
	CodeJobNotPending         ErrorCode = "JOB_NOT_PENDING"
	CodeInvalidJobTransition  ErrorCode = "INVALID_JOB_TRANSITION"
	CodeRejectReasonTooShort ErrorCode = "REJECT_REASON_TOO_SHORT"

	// Бизнес-логика
	CodeConflict                ErrorCode = "CONFLICT"
	CodeEmailAlreadyExists      ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeInvalidPaymentAmount    ErrorCode = "INVALID_PAYMENT_AMOUNT"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"

	// Системные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)
