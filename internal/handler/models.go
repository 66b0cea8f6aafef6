package handler

import (
	"time"

	"github.com/Testicode234/developer-2/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 请求模型

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// AssignDeveloperRequest 指派开发者请求
type AssignDeveloperRequest struct {
	DeveloperID uint `json:"developer_id" binding:"required"`
}

// CreateMilestoneRequest 创建里程碑请求
type CreateMilestoneRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// OpenDisputeRequest 发起争议请求
type OpenDisputeRequest struct {
	Reason string `json:"reason"`
}

// ResolveDisputeRequest 裁决争议请求
type ResolveDisputeRequest struct {
	Resolution   string  `json:"resolution" binding:"required"`
	RefundAmount float64 `json:"refund_amount"`
	Reason       string  `json:"reason"`
}

// 响应模型

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	ID          uint       `json:"id"`
	ProjectID   uint       `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Deadline    time.Time  `json:"deadline"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paidAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToMilestoneResponse 转换里程碑响应
func ToMilestoneResponse(m *model.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		Amount:      m.Amount,
		Deadline:    m.Deadline,
		Status:      string(m.Status),
		PaidAt:      m.PaidAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ToMilestoneResponseList 转换里程碑响应列表
func ToMilestoneResponseList(ms []model.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToMilestoneResponse(&ms[i]))
	}
	return out
}

// PaymentResponse 支付响应模型
type PaymentResponse struct {
	ID               uint      `json:"id"`
	SenderID         uint      `json:"senderId"`
	ReceiverID       uint      `json:"receiverId"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"`
	GatewayReference string    `json:"gatewayReference"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToPaymentResponse 转换支付响应
func ToPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		SenderID:         p.SenderID,
		ReceiverID:       p.ReceiverID,
		Amount:           p.Amount,
		Status:           string(p.Status),
		GatewayReference: p.GatewayReference,
		CreatedAt:        p.CreatedAt,
	}
}

// DisputeResponse 争议响应模型
type DisputeResponse struct {
	ID           uint       `json:"id"`
	PaymentID    uint       `json:"paymentId"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution"`
	RefundAmount float64    `json:"refundAmount"`
	ResolverID   *uint      `json:"resolverId"`
	ResolvedAt   *time.Time `json:"resolvedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ToDisputeResponse 转换争议响应
func ToDisputeResponse(d *model.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:           d.ID,
		PaymentID:    d.PaymentID,
		Status:       string(d.Status),
		Resolution:   d.Resolution,
		RefundAmount: d.RefundAmount,
		ResolverID:   d.ResolverID,
		ResolvedAt:   d.ResolvedAt,
		CreatedAt:    d.CreatedAt,
	}
}

// AdminLogResponse 审计日志响应模型
type AdminLogResponse struct {
	ID        uint      `json:"id"`
	AdminID   uint      `json:"adminId"`
	Action    string    `json:"action"`
	TargetID  uint      `json:"targetId"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToAdminLogResponseList 转换审计日志响应列表
func ToAdminLogResponseList(entries []model.AdminLogEntry) []AdminLogResponse {
	out := make([]AdminLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AdminLogResponse{
			ID:        e.ID,
			AdminID:   e.AdminID,
			Action:    e.Action,
			TargetID:  e.TargetID,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
