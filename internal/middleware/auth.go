package middleware

import (
	"net/http"
	"strings"

	"hirehub_backend/internal/auth"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Ключи контекста Gin, которые заполняет AuthMiddleware
const (
	CtxUserID    = "userID"
	CtxAccountID = "accountID"
	CtxRole      = "role"
	CtxIsOwner   = "isOwner"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Сохраняем claims в контекст
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxIsOwner, auth.IsOwner(claims))

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get(CtxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}

		roleStr, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: invalid role type"})
			return
		}

		if !roleSet[models.UserRole(roleStr)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}

		c.Next()
	}
}

// RequirePermission пропускает запрос, только если набор возможностей
// роли вызывающего содержит требуемую
func RequirePermission(check func(auth.Permissions) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := auth.PermissionsForRole(c.GetString(CtxRole))
		if !check(perms) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}
		c.Next()
	}
}

// AccountID достает идентификатор аккаунта компании из контекста запроса
func AccountID(c *gin.Context) string {
	return c.GetString(CtxAccountID)
}

// UserID достает идентификатор пользователя из контекста запроса
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// IsOwner сообщает, действует ли вызывающий как владелец аккаунта
func IsOwner(c *gin.Context) bool {
	return c.GetBool(CtxIsOwner)
}
