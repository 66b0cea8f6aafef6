package model

import "time"

// AdminLogEntry 审计日志，只追加不修改
//
// 记录"谁在什么时候授权了什么、钱怎么动的"。没有 UpdatedAt 和软删除，
// 任何人（包括管理员）都不能改写历史。
type AdminLogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	AdminID  uint   `json:"admin_id" gorm:"not null;index"`
	Action   string `json:"action" gorm:"not null;index"`
	TargetID uint   `json:"target_id" gorm:"index"`

	// 动作相关的结构化明细，JSON 编码
	Details string `json:"details" gorm:"type:text"`
}

// 审计动作
const (
	ActionReleasePayment = "release_payment"
	ActionResolveDispute = "resolve_dispute"
)
