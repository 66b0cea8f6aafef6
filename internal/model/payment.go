package model

import "time"

// Payment 资金转移记录，对应里程碑放款或争议退款
//
// completed 之后金额与网关引用号不可变更，不做软删除。
type Payment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SenderID   uint    `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint    `json:"receiver_id" gorm:"not null;index"`
	Amount     float64 `json:"amount" gorm:"not null"`

	Status PaymentStatus `json:"status" gorm:"default:'pending'"`

	// 支付网关返回的转账引用号，用于对账
	GatewayReference string `json:"gateway_reference" gorm:"uniqueIndex"`

	// 可选的业务上下文
	MilestoneID *uint `json:"milestone_id" gorm:"index"`
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // 处理中
	PaymentStatusCompleted PaymentStatus = "completed" // 已完成
	PaymentStatusFailed    PaymentStatus = "failed"    // 失败
)
