package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/errs"
	"github.com/Testicode234/developer-2/internal/gateway"
	"github.com/Testicode234/developer-2/internal/logger"
	"github.com/Testicode234/developer-2/internal/metrics"
	"github.com/Testicode234/developer-2/internal/model"
	"gorm.io/gorm"
)

// DisputeLogic 支付争议业务逻辑
type DisputeLogic struct {
	db             *gorm.DB
	gateway        gateway.Gateway
	audit          *AuditLogic
	gatewayTimeout time.Duration

	// 按争议ID串行化裁决，网关退款没有共享幂等令牌，
	// 并发裁决必须在进程内排队
	locks *keyedMutex
}

// NewDisputeLogic 创建争议业务逻辑
func NewDisputeLogic(db *gorm.DB, gw gateway.Gateway, audit *AuditLogic, gatewayTimeout time.Duration) *DisputeLogic {
	return &DisputeLogic{
		db:             db,
		gateway:        gw,
		audit:          audit,
		gatewayTimeout: gatewayTimeout,
		locks:          newKeyedMutex(),
	}
}

// OpenDispute 对一笔支付发起争议
//
// 同一笔支付同时只允许一个未决争议：事务内先查再建，并发穿过
// 检查的由部分唯一索引拦下，统一报Conflict。
func (d *DisputeLogic) OpenDispute(openerID uint, paymentID uint, reason string) (*model.Dispute, error) {
	dispute := model.Dispute{
		PaymentID: paymentID,
		OpenerID:  openerID,
		Reason:    reason,
		Status:    model.DisputeStatusPending,
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var payment model.Payment
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payment %d: %w", paymentID, errs.ErrNotFound)
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Dispute{}).
			Where("payment_id = ? AND status = ?", paymentID, model.DisputeStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("payment %d already has a pending dispute: %w", paymentID, errs.ErrConflict)
		}

		return tx.Create(&dispute).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("payment %d already has a pending dispute: %w", paymentID, errs.ErrConflict)
		}
		return nil, err
	}

	return &dispute, nil
}

// ResolveDispute 管理员裁决争议
//
// 退款金额为正时必须先拿到网关退款成功，才允许写resolved；
// 退款打不出去却把争议标记关闭，等于承诺的退款凭空消失。
//
// 同一争议的裁决在进程内按ID互斥：读状态、打退款、条件更新是
// 一个不可交错的序列，并发的第二个裁决会重读到resolved而不是
// 打出第二笔退款。退款成功后引用号先落在未决行上，账本随后写
// 失败时按结果不明上报，重试复用已落的引用号而不再调网关。
func (d *DisputeLogic) ResolveDispute(actor auth.Actor, disputeID uint, resolution string, refundAmount float64, reason string) (*model.Dispute, error) {
	if !auth.IsAdministrator(actor) {
		return nil, fmt.Errorf("actor %d lacks administrator capability: %w", actor.ID, errs.ErrForbidden)
	}

	d.locks.Lock(disputeID)
	defer d.locks.Unlock(disputeID)

	var dispute model.Dispute
	if err := d.db.First(&dispute, disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dispute %d: %w", disputeID, errs.ErrNotFound)
		}
		return nil, err
	}

	if dispute.Status != model.DisputeStatusPending {
		return nil, fmt.Errorf("dispute status is %s: %w", dispute.Status, errs.ErrInvalidState)
	}

	var payment model.Payment
	if err := d.db.First(&payment, dispute.PaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", dispute.PaymentID, errs.ErrNotFound)
		}
		return nil, err
	}

	if refundAmount < 0 {
		return nil, fmt.Errorf("refund amount must not be negative: %w", errs.ErrInvalidInput)
	}
	if refundAmount > payment.Amount {
		return nil, fmt.Errorf("refund amount %.2f exceeds payment amount %.2f: %w",
			refundAmount, payment.Amount, errs.ErrInvalidInput)
	}

	var refundReference string
	switch {
	case refundAmount == 0 && dispute.RefundReference != "":
		// 已执行的退款不能被一次零退款的裁决抹掉
		return nil, fmt.Errorf("refund of %.2f already executed as %s: %w",
			dispute.RefundAmount, dispute.RefundReference, errs.ErrConflict)
	case refundAmount > 0 && dispute.RefundReference != "":
		// 上一次裁决已在网关侧退款成功，只差账本没写进去。
		// 引用号留在未决行上，这里复用而不是再打一笔。
		if dispute.RefundAmount != refundAmount {
			return nil, fmt.Errorf("refund of %.2f already executed as %s, amount %.2f cannot apply: %w",
				dispute.RefundAmount, dispute.RefundReference, refundAmount, errs.ErrConflict)
		}
		refundReference = dispute.RefundReference
	case refundAmount > 0:
		ctx, cancel := context.WithTimeout(context.Background(), d.gatewayTimeout)
		defer cancel()

		ref, err := d.gateway.Refund(ctx, payment.GatewayReference, refundAmount)
		if err != nil {
			if errors.Is(err, gateway.ErrRejected) {
				metrics.RefundTotal.WithLabelValues("rejected").Inc()
				return nil, fmt.Errorf("refund rejected: %w", errs.ErrPaymentFailed)
			}
			metrics.RefundTotal.WithLabelValues("uncertain").Inc()
			logger.Warn("Refund outcome uncertain for dispute %d: %v", dispute.ID, err)
			return nil, fmt.Errorf("refund outcome unknown: %w", errs.ErrPaymentUncertain)
		}
		refundReference = ref

		// 钱已经动了，引用号先落在未决行上，后面的resolved写挂掉
		// 时重试才能识别出退款已完成
		if err := d.db.Model(&model.Dispute{}).
			Where("id = ? AND status = ?", dispute.ID, model.DisputeStatusPending).
			Updates(map[string]interface{}{
				"refund_amount":    refundAmount,
				"refund_reference": refundReference,
			}).Error; err != nil {
			logger.Error("Failed to record refund reference %s on dispute %d: %v", refundReference, dispute.ID, err)
		}
	}

	now := time.Now()
	res := d.db.Model(&model.Dispute{}).
		Where("id = ? AND status = ?", dispute.ID, model.DisputeStatusPending).
		Updates(map[string]interface{}{
			"status":            model.DisputeStatusResolved,
			"resolution":        resolution,
			"resolution_reason": reason,
			"refund_amount":     refundAmount,
			"refund_reference":  refundReference,
			"resolver_id":       actor.ID,
			"resolved_at":       now,
		})
	if res.Error != nil {
		if refundReference != "" {
			// 网关已退款但resolved没写进去，按结果不明上报；
			// 重试会复用已落的引用号，不会第二次调网关
			metrics.RefundTotal.WithLabelValues("uncertain").Inc()
			logger.Error("Ledger write failed after refund %s: %v", refundReference, res.Error)
			return nil, fmt.Errorf("ledger update failed after refund %s: %w", refundReference, errs.ErrPaymentUncertain)
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("dispute already resolved: %w", errs.ErrInvalidState)
	}

	if refundAmount > 0 {
		metrics.RefundTotal.WithLabelValues("success").Inc()
	}
	d.audit.Record(actor.ID, model.ActionResolveDispute, dispute.ID, map[string]interface{}{
		"outcome":          "resolved",
		"resolution":       resolution,
		"refund_amount":    refundAmount,
		"refund_reference": refundReference,
		"reason":           reason,
	})

	if err := d.db.First(&dispute, disputeID).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

// GetDispute 查询争议详情
func (d *DisputeLogic) GetDispute(disputeID uint) (*model.Dispute, error) {
	var dispute model.Dispute
	if err := d.db.Preload("Payment").First(&dispute, disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dispute %d: %w", disputeID, errs.ErrNotFound)
		}
		return nil, err
	}
	return &dispute, nil
}

// isUniqueViolation 识别底层驱动的唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
