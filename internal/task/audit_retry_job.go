package task

import (
	"time"

	"github.com/Testicode234/developer-2/internal/config"
	"github.com/Testicode234/developer-2/internal/logger"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// AuditRetryJob 审计日志重试任务
//
// 审计写入失败不会阻塞资金操作，失败条目进入内存队列，
// 由这个任务离线冲刷回数据库。
type AuditRetryJob struct {
	audit  *logic.AuditLogic
	config *config.Config
}

// NewAuditRetryJob 创建审计日志重试任务
func NewAuditRetryJob(audit *logic.AuditLogic, cfg *config.Config) *AuditRetryJob {
	return &AuditRetryJob{
		audit:  audit,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *AuditRetryJob) GetName() string {
	return "audit_log_retry"
}

// GetSchedule 获取调度配置
func (j *AuditRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *AuditRetryJob) Execute() {
	pending := j.audit.PendingRetries()
	if pending == 0 {
		return
	}

	logger.Info("Starting audit retry task, %d entries pending", pending)
	j.audit.FlushRetries()
}
