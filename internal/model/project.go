package model

import (
	"time"

	"gorm.io/gorm"
)

// Project 雇佣项目，项目方与开发者之间的一次合作
type Project struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// 双方
	ClientID    uint  `json:"client_id" gorm:"not null;index"`
	DeveloperID *uint `json:"developer_id" gorm:"index"` // 接单前为空

	// 状态
	Status ProjectStatus `json:"status" gorm:"default:'open'"`

	// 关联
	Milestones []Milestone `json:"milestones,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"        // 招募中
	ProjectStatusInProgress ProjectStatus = "in_progress" // 进行中
	ProjectStatusCompleted  ProjectStatus = "completed"   // 已完成
	ProjectStatusCancelled  ProjectStatus = "cancelled"   // 已取消
)
