package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибки по коду через errors.Is,
// чтобы ошибка с Details (лимит, использование) матчилась с предопределенной
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if stderrors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// Конструктор
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// С цепочкой ошибок
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails возвращает КОПИЮ ошибки с деталями,
// предопределенные ошибки остаются неизменными
func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// Для маршалинга в JSON
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// AsAppError извлекает *AppError из цепочки ошибок
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// LimitDetails - детали отказа по квоте для клиентских сообщений
type LimitDetails struct {
	Limit int `json:"limit"`
	Used  int `json:"used"`
}

// Предопределенные ошибки
var (
	// Аутентификация
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)

	// Пользователи
	ErrUserNotFound            = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrEmailAlreadyExists      = New(CodeEmailAlreadyExists, "Email already exists", http.StatusConflict)
	ErrWeakPassword            = New(CodeWeakPassword, "Password must be at least 6 characters", http.StatusBadRequest)
	ErrInvalidUserRole         = New(CodeInvalidUserRole, "Invalid user role", http.StatusBadRequest)
	ErrInsufficientPermissions = New(CodeInsufficientPermissions, "Insufficient permissions", http.StatusForbidden)

	// Валидация
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)

	// Ресурсы
	ErrJobNotFound          = New(CodeJobNotFound, "Job not found", http.StatusNotFound)
	ErrTeamMemberNotFound   = New(CodeTeamMemberNotFound, "Team member not found", http.StatusNotFound)
	ErrPlanNotFound         = New(CodePlanNotFound, "Subscription plan not found", http.StatusNotFound)
	ErrSubscriptionNotFound = New(CodeSubscriptionNotFound, "Subscription not found", http.StatusNotFound)
	ErrPaymentNotFound      = New(CodePaymentNotFound, "Payment transaction not found", http.StatusNotFound)

	// Подписки и квоты
	ErrNoSubscription           = New(CodeNoSubscription, "No subscription plan could be resolved for this account", http.StatusConflict)
	ErrJobLimitReached          = New(CodeJobLimitReached, "Active job limit for the current plan reached", http.StatusForbidden)
	ErrTeamLimitReached         = New(CodeTeamLimitReached, "Team member limit for the current plan reached", http.StatusForbidden)
	ErrManagerLimitReached      = New(CodeManagerLimitReached, "Manager limit for the current plan reached", http.StatusForbidden)
	ErrApplicationLimitReached  = New(CodeApplicationLimitReached, "Application limit for this job reached", http.StatusForbidden)
	ErrSubscriptionCancelled    = New(CodeSubscriptionCancelled, "Subscription is already cancelled", http.StatusBadRequest)
	ErrInvalidPaymentAmount     = New(CodeInvalidPaymentAmount, "Payment amount does not match", http.StatusBadRequest)

	// Жизненный цикл вакансий
	ErrJobNotPending        = New(CodeJobNotPending, "Job is not pending approval", http.StatusConflict)
	ErrInvalidJobTransition = New(CodeInvalidJobTransition, "Job status transition is not allowed", http.StatusBadRequest)
	ErrRejectReasonTooShort = New(CodeRejectReasonTooShort, "Rejection reason must be at least 10 characters", http.StatusBadRequest)
)

// Функции-помощники для создания ошибок с деталями
func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func NotFound(resource string) *AppError {
	return New(CodeUserNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

// LimitReached добавляет к отказу по квоте числовой лимит и текущее использование
func LimitReached(base *AppError, limit, used int) *AppError {
	return base.WithDetails(LimitDetails{Limit: limit, Used: used})
}

func NewConflictError(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func NewInternalError(message string) *AppError {
	return New(CodeInternalError, message, http.StatusInternalServerError)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NewNotFoundError(message string) *AppError {
	return New(CodeUserNotFound, message, http.StatusNotFound)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}
