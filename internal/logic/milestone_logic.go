package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/errs"
	"github.com/Testicode234/developer-2/internal/gateway"
	"github.com/Testicode234/developer-2/internal/logger"
	"github.com/Testicode234/developer-2/internal/metrics"
	"github.com/Testicode234/developer-2/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 幂等令牌的命名空间，同一里程碑在任何进程里都推导出同一个令牌
var payoutNamespace = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

// MilestoneLogic 里程碑业务逻辑：状态机与放款执行
type MilestoneLogic struct {
	db             *gorm.DB
	gateway        gateway.Gateway
	audit          *AuditLogic
	gatewayTimeout time.Duration

	// 按里程碑ID串行化放款，避免并发释放打出第二笔转账
	locks *keyedMutex
}

// NewMilestoneLogic 创建里程碑业务逻辑
func NewMilestoneLogic(db *gorm.DB, gw gateway.Gateway, audit *AuditLogic, gatewayTimeout time.Duration) *MilestoneLogic {
	return &MilestoneLogic{
		db:             db,
		gateway:        gw,
		audit:          audit,
		gatewayTimeout: gatewayTimeout,
		locks:          newKeyedMutex(),
	}
}

// PayoutIdempotencyKey 由里程碑ID确定性推导的幂等令牌。
// 超时后的重试会复用同一令牌，网关侧至多放款一次。
func PayoutIdempotencyKey(milestoneID uint) string {
	return uuid.NewSHA1(payoutNamespace, []byte(fmt.Sprintf("milestone-payout-%d", milestoneID))).String()
}

// CreateMilestone 创建里程碑
//
// 仅项目所有者可创建，且项目必须处于进行中。低风险操作，不写审计。
func (m *MilestoneLogic) CreateMilestone(actor auth.Actor, projectID uint, title, description string, amount float64, deadline time.Time) (*model.Milestone, error) {
	var project model.Project
	if err := m.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, errs.ErrNotFound)
		}
		return nil, err
	}

	if !auth.IsProjectOwner(actor, &project) {
		return nil, fmt.Errorf("actor %d is not the project owner: %w", actor.ID, errs.ErrForbidden)
	}

	if project.Status != model.ProjectStatusInProgress {
		return nil, fmt.Errorf("project status is %s: %w", project.Status, errs.ErrInvalidState)
	}

	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", errs.ErrInvalidInput)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", errs.ErrInvalidInput)
	}
	if deadline.Before(time.Now()) {
		return nil, fmt.Errorf("deadline is in the past: %w", errs.ErrInvalidInput)
	}

	milestone := model.Milestone{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Amount:      amount,
		Deadline:    deadline,
		Status:      model.MilestoneStatusPending,
	}
	if err := m.db.Create(&milestone).Error; err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	return &milestone, nil
}

// MarkCompleted 交付验收事件触发的流转，仅允许 pending -> completed
func (m *MilestoneLogic) MarkCompleted(milestoneID uint) error {
	res := m.db.Model(&model.Milestone{}).
		Where("id = ? AND status = ?", milestoneID, model.MilestoneStatusPending).
		Update("status", model.MilestoneStatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var milestone model.Milestone
		if err := m.db.First(&milestone, milestoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("milestone %d: %w", milestoneID, errs.ErrNotFound)
			}
			return err
		}
		return fmt.Errorf("milestone status is %s: %w", milestone.Status, errs.ErrInvalidState)
	}
	return nil
}

// ReleasePayment 放款：completed -> paid，资金从项目方转给开发者
//
// 同一里程碑恰好放款一次。进程内用按ID的互斥锁串行化，跨进程靠
// 幂等令牌 + 状态条件更新兜底。网关调用设有界超时，超时按结果
// 不明处理，调用方需携带同一令牌重试。
func (m *MilestoneLogic) ReleasePayment(actor auth.Actor, milestoneID uint) (*model.Payment, error) {
	m.locks.Lock(milestoneID)
	defer m.locks.Unlock(milestoneID)

	var milestone model.Milestone
	if err := m.db.Preload("Project").First(&milestone, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("milestone %d: %w", milestoneID, errs.ErrNotFound)
		}
		return nil, err
	}

	if !auth.IsProjectOwner(actor, &milestone.Project) {
		return nil, fmt.Errorf("actor %d is not the project owner: %w", actor.ID, errs.ErrForbidden)
	}

	// 幂等护栏：重复释放或未验收都会停在这里
	if milestone.Status != model.MilestoneStatusCompleted {
		return nil, fmt.Errorf("milestone status is %s: %w", milestone.Status, errs.ErrInvalidState)
	}

	if milestone.Project.DeveloperID == nil {
		return nil, fmt.Errorf("project has no developer assigned: %w", errs.ErrInvalidState)
	}

	var developer model.User
	if err := m.db.First(&developer, *milestone.Project.DeveloperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("developer %d: %w", *milestone.Project.DeveloperID, errs.ErrNotFound)
		}
		return nil, err
	}
	if developer.PayoutAccount == "" {
		return nil, fmt.Errorf("developer has no payout account: %w", errs.ErrInvalidState)
	}

	token := PayoutIdempotencyKey(milestone.ID)

	ctx, cancel := context.WithTimeout(context.Background(), m.gatewayTimeout)
	defer cancel()

	reference, err := m.gateway.Transfer(ctx, developer.PayoutAccount, milestone.Amount, token)
	if err != nil {
		if errors.Is(err, gateway.ErrRejected) {
			metrics.PayoutTotal.WithLabelValues("rejected").Inc()
			m.audit.Record(actor.ID, model.ActionReleasePayment, milestone.ID, map[string]interface{}{
				"outcome": "failed",
				"amount":  milestone.Amount,
				"reason":  err.Error(),
			})
			return nil, fmt.Errorf("transfer rejected: %w", errs.ErrPaymentFailed)
		}
		// 超时或响应不明：里程碑保持completed，调用方用同一令牌重试
		metrics.PayoutTotal.WithLabelValues("uncertain").Inc()
		logger.Warn("Transfer outcome uncertain for milestone %d: %v", milestone.ID, err)
		return nil, fmt.Errorf("transfer outcome unknown, retry with the same token: %w", errs.ErrPaymentUncertain)
	}

	// 账本写入必须原子：不存在"已paid但没有Payment行"的中间态
	now := time.Now()
	payment := model.Payment{
		SenderID:         milestone.Project.ClientID,
		ReceiverID:       developer.ID,
		Amount:           milestone.Amount,
		Status:           model.PaymentStatusCompleted,
		GatewayReference: reference,
		MilestoneID:      &milestone.ID,
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Milestone{}).
			Where("id = ? AND status = ?", milestone.ID, model.MilestoneStatusCompleted).
			Updates(map[string]interface{}{
				"status":  model.MilestoneStatusPaid,
				"paid_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 另一个写入方赢了条件更新。网关侧因共享幂等令牌只放款了一次，
			// 账本由胜者负责。
			return fmt.Errorf("milestone already paid: %w", errs.ErrInvalidState)
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidState) {
			return nil, err
		}
		// 网关已放款但账本没写进去，按结果不明上报，重试靠幂等令牌安全
		metrics.PayoutTotal.WithLabelValues("uncertain").Inc()
		logger.Error("Ledger write failed after gateway transfer %s: %v", reference, err)
		return nil, fmt.Errorf("ledger update failed after transfer %s: %w", reference, errs.ErrPaymentUncertain)
	}

	metrics.PayoutTotal.WithLabelValues("success").Inc()
	m.audit.Record(actor.ID, model.ActionReleasePayment, milestone.ID, map[string]interface{}{
		"outcome":           "success",
		"amount":            milestone.Amount,
		"gateway_reference": reference,
		"payment_id":        payment.ID,
	})

	return &payment, nil
}

// ListMilestones 项目参与方查看里程碑列表
func (m *MilestoneLogic) ListMilestones(actor auth.Actor, projectID uint) ([]model.Milestone, error) {
	var project model.Project
	if err := m.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, errs.ErrNotFound)
		}
		return nil, err
	}

	if !auth.IsParticipant(actor, &project) {
		return nil, fmt.Errorf("actor %d is not a project participant: %w", actor.ID, errs.ErrForbidden)
	}

	var milestones []model.Milestone
	if err := m.db.Where("project_id = ?", projectID).Order("deadline ASC").Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}
