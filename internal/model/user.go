package model

import (
	"time"

	"gorm.io/gorm"
)

// User 平台用户
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	FullName string `json:"full_name" gorm:"not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Role     Role   `json:"role" gorm:"default:'client'"`

	// 支付网关侧的收款账户标识（由网关侧开户流程写入）
	PayoutAccount string `json:"payout_account"`
}

// Role 用户角色
type Role string

const (
	RoleClient    Role = "client"    // 项目方
	RoleDeveloper Role = "developer" // 开发者
	RoleAdmin     Role = "admin"     // 管理员
)
