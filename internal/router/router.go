package router

import (
	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/config"
	"github.com/Testicode234/developer-2/internal/handler"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Logics 路由依赖的业务逻辑集合
type Logics struct {
	Project   *logic.ProjectLogic
	Milestone *logic.MilestoneLogic
	Dispute   *logic.DisputeLogic
	Audit     *logic.AuditLogic
}

func Setup(logics Logics, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "developer-2",
		})
	})

	// 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本组，身份由上游签发的令牌提供
	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(cfg.Auth.JWTSecret))
	{
		projectHandler := handler.NewProjectHandler(logics.Project)
		milestoneHandler := handler.NewMilestoneHandler(logics.Milestone)
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.POST("/:id/assign", projectHandler.AssignDeveloper)
			projects.POST("/:id/complete", projectHandler.CompleteProject)
			projects.DELETE("/:id", projectHandler.CancelProject)
			projects.POST("/:id/milestones", milestoneHandler.CreateMilestone)
			projects.GET("/:id/milestones", milestoneHandler.ListMilestones)
		}

		milestones := v1.Group("/milestones")
		{
			milestones.POST("/:id/complete", milestoneHandler.CompleteMilestone)
			milestones.POST("/:id/release", milestoneHandler.ReleasePayment)
		}

		disputeHandler := handler.NewDisputeHandler(logics.Dispute)
		v1.POST("/payments/:id/disputes", disputeHandler.OpenDispute)
		disputes := v1.Group("/disputes")
		{
			disputes.GET("/:id", disputeHandler.GetDispute)
			disputes.POST("/:id/resolve", disputeHandler.ResolveDispute)
		}

		adminHandler := handler.NewAdminHandler(logics.Audit)
		admin := v1.Group("/admin")
		{
			admin.GET("/logs", adminHandler.GetAdminLogs)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
