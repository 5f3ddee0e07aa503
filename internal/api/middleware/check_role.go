package middleware

import (
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/response"
	"slices"

	"github.com/gin-gonic/gin"
)

// CheckRoles 检查当前用户是否拥有至少一个指定的角色
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice(consts.CtxRoles)

		allowed := slices.ContainsFunc(roles, func(role string) bool {
			return slices.Contains(requiredRoles, role)
		})
		if !allowed {
			response.Fail(c, response.Forbidden, "权限不足：仅创作者或管理员可查看分析数据")
			c.Abort()
			return
		}

		c.Next()
	}
}
