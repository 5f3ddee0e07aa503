package api

import (
	"Lumen/internal/api/middleware"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		analyticsGroup := apiGroup.Group("/analytics")
		{
			trackGroup := analyticsGroup.Group("/track")
			{
				// 浏览允许匿名
				trackGroup.POST("/view/:content_id", middleware.AuthOptionalMiddleware(), group.TrackingHandler.TrackView)
				trackGroup.POST("/engagement/:content_id", middleware.AuthMiddleware(), group.TrackingHandler.TrackEngagement)
			}

			// 需要登录 & 拥有 creator 或 admin 角色
			creatorGroup := analyticsGroup.Group("")
			creatorGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleCreator, consts.RoleAdmin))
			{
				creatorGroup.GET("/content/:content_id", group.AnalyticsHandler.GetContentAnalytics)
				creatorGroup.GET("/dashboard", group.AnalyticsHandler.GetCreatorDashboard)
				creatorGroup.GET("/report", group.AnalyticsHandler.GetAnalyticsReport)
			}
		}
	}

	return r
}
