package model

import (
	"time"

	"gorm.io/gorm"
)

// Milestone 项目里程碑，一笔可支付的交付物
//
// 状态只允许单向流转：pending -> completed -> paid。
// paid 之后记录不再变更，取消项目的级联删除也会跳过它。
type Milestone struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	ProjectID   uint      `json:"project_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Deadline    time.Time `json:"deadline" gorm:"not null"`

	Status MilestoneStatus `json:"status" gorm:"default:'pending'"`
	PaidAt *time.Time      `json:"paid_at"`

	// 关联
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"   // 待交付
	MilestoneStatusCompleted MilestoneStatus = "completed" // 已验收，待放款
	MilestoneStatusPaid      MilestoneStatus = "paid"      // 已放款
)
