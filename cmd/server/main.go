package main

import (
	"log"

	"github.com/Testicode234/developer-2/internal/config"
	"github.com/Testicode234/developer-2/internal/database"
	"github.com/Testicode234/developer-2/internal/gateway"
	"github.com/Testicode234/developer-2/internal/logger"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/Testicode234/developer-2/internal/router"
	"github.com/Testicode234/developer-2/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.Output == "file" {
		l, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(l)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化支付网关客户端
	gatewayClient, err := gateway.Init(cfg.Gateway)
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway client: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 组装业务逻辑
	auditLogic := logic.NewAuditLogic(db)
	logics := router.Logics{
		Project:   logic.NewProjectLogic(db),
		Milestone: logic.NewMilestoneLogic(db, gatewayClient, auditLogic, cfg.Gateway.Timeout()),
		Dispute:   logic.NewDisputeLogic(db, gatewayClient, auditLogic, cfg.Gateway.Timeout()),
		Audit:     auditLogic,
	}

	// 初始化路由
	r := router.Setup(logics, cfg)

	// 启动定时任务
	task.Start(auditLogic, cfg)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
