package model

import "time"

// Dispute 支付争议
//
// 同一笔支付同时只允许一个未决争议，由 disputes(payment_id) 上的
// 部分唯一索引保证（见 database.Init）。状态单向：pending -> resolved。
type Dispute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PaymentID uint   `json:"payment_id" gorm:"not null;index"`
	OpenerID  uint   `json:"opener_id" gorm:"not null"`
	Reason    string `json:"reason" gorm:"type:text"`

	Status DisputeStatus `json:"status" gorm:"default:'pending'"`

	// 裁决结果
	Resolution       string     `json:"resolution"`
	ResolutionReason string     `json:"resolution_reason" gorm:"type:text"`
	RefundAmount     float64    `json:"refund_amount" gorm:"default:0"`
	RefundReference  string     `json:"refund_reference"`
	ResolverID       *uint      `json:"resolver_id"`
	ResolvedAt       *time.Time `json:"resolved_at"`

	// 关联
	Payment Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
}

// DisputeStatus 争议状态
type DisputeStatus string

const (
	DisputeStatusPending  DisputeStatus = "pending"  // 待裁决
	DisputeStatusResolved DisputeStatus = "resolved" // 已裁决
)
