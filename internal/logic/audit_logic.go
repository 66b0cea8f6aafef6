package logic

import (
	"encoding/json"
	"sync"

	"github.com/Testicode234/developer-2/internal/logger"
	"github.com/Testicode234/developer-2/internal/metrics"
	"github.com/Testicode234/developer-2/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// AuditLogic 审计日志业务逻辑
//
// 写入是尽力而为的：落库失败只上报运维日志并进入内存重试队列，
// 绝不作为调用方的错误返回。网关侧已经发生的资金移动不能因为
// 审计不可用而被阻塞或回滚。
type AuditLogic struct {
	db   *gorm.DB
	pool *ants.Pool

	mu    sync.Mutex
	retry []model.AdminLogEntry
}

// NewAuditLogic 创建审计日志业务逻辑
func NewAuditLogic(db *gorm.DB) *AuditLogic {
	pool, err := ants.NewPool(4)
	if err != nil {
		logger.Fatal("Failed to create audit worker pool: %v", err)
	}

	return &AuditLogic{
		db:   db,
		pool: pool,
	}
}

// Record 追加一条审计记录
func (a *AuditLogic) Record(actorID uint, action string, targetID uint, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		logger.Error("Failed to encode audit details for action %s: %v", action, err)
		payload = []byte("{}")
	}

	entry := model.AdminLogEntry{
		AdminID:  actorID,
		Action:   action,
		TargetID: targetID,
		Details:  string(payload),
	}

	if err := a.db.Create(&entry).Error; err != nil {
		logger.Error("Failed to write audit entry action=%s target=%d: %v", action, targetID, err)
		a.enqueue(entry)
	}
}

// enqueue 进入重试队列，等待任务调度器的离线冲刷
func (a *AuditLogic) enqueue(entry model.AdminLogEntry) {
	a.mu.Lock()
	a.retry = append(a.retry, entry)
	depth := len(a.retry)
	a.mu.Unlock()

	metrics.AuditRetryQueueDepth.Set(float64(depth))
}

// PendingRetries 当前等待重试的条数
func (a *AuditLogic) PendingRetries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.retry)
}

// FlushRetries 重试队列中的落库，由定时任务触发
func (a *AuditLogic) FlushRetries() {
	a.mu.Lock()
	pending := a.retry
	a.retry = nil
	a.mu.Unlock()

	if len(pending) == 0 {
		metrics.AuditRetryQueueDepth.Set(0)
		return
	}

	var wg sync.WaitGroup
	for i := range pending {
		entry := pending[i]
		wg.Add(1)
		submitErr := a.pool.Submit(func() {
			defer wg.Done()
			if err := a.db.Create(&entry).Error; err != nil {
				logger.Error("Audit retry failed action=%s target=%d: %v", entry.Action, entry.TargetID, err)
				a.enqueue(entry)
			}
		})
		if submitErr != nil {
			wg.Done()
			a.enqueue(entry)
		}
	}
	wg.Wait()

	a.mu.Lock()
	depth := len(a.retry)
	a.mu.Unlock()
	metrics.AuditRetryQueueDepth.Set(float64(depth))
	logger.Info("Audit retry flush completed, %d entries still pending", depth)
}

// ListLogs 管理端审计日志查询
func (a *AuditLogic) ListLogs(action string, adminID uint, page, pageSize int) ([]model.AdminLogEntry, int64, error) {
	var entries []model.AdminLogEntry
	var total int64

	query := a.db.Model(&model.AdminLogEntry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if adminID > 0 {
		query = query.Where("admin_id = ?", adminID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Release 释放审计工作池
func (a *AuditLogic) Release() {
	a.pool.Release()
}
