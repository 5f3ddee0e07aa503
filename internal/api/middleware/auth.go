package middleware

import (
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/response"
	"Lumen/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失、无效或已过期")
			c.Abort()
			return
		}

		setIdentity(c, claims.UserID, claims.Roles)
		c.Next()
	}
}

// parseBearer 解析 Authorization 头，缺失或校验失败返回 false
func parseBearer(c *gin.Context) (*security.UserClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	claims, err := security.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, userID uint64, roles []string) {
	c.Set(consts.CtxUserID, userID)
	c.Set(consts.CtxRoles, roles)

	//nolint:staticcheck
	newCtx := context.WithValue(c.Request.Context(), consts.CtxUserID, userID)
	c.Request = c.Request.WithContext(newCtx)
}
