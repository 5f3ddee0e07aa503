package middleware

import (
	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入身份，失败或缺失则按匿名处理（UID 为 0）
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c); ok {
			setIdentity(c, claims.UserID, claims.Roles)
		} else {
			setIdentity(c, 0, nil)
		}
		c.Next()
	}
}
