package handlers

import (
	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/middleware"
	"hirehub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// BindAndValidateJSON привязывает тело запроса и прогоняет его через валидатор.
// При ошибке пишет ответ и возвращает false
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		appErrors.HandleError(c, appErrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			appErrors.HandleError(c, appErrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			appErrors.HandleError(c, appErrors.InternalError(err))
		}
		return false
	}
	return true
}

// HandleServiceError переводит ошибку сервиса в HTTP-ответ
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if appErr, ok := appErrors.AsAppError(err); ok {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		appErrors.HandleError(c, appErr)
		return
	}

	logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
	appErrors.HandleError(c, appErrors.InternalError(err))
}

// RequireAccountID достает accountID из claims; его отсутствие означает
// запрос мимо AuthMiddleware
func (h *BaseHandler) RequireAccountID(c *gin.Context) (string, bool) {
	accountID := middleware.AccountID(c)
	if accountID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: accountID not found in context",
			"path", c.Request.URL.Path, "ip", c.ClientIP())
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return accountID, true
}
