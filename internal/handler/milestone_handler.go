package handler

import (
	"net/http"
	"strconv"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/gin-gonic/gin"
)

// MilestoneHandler 里程碑处理器
type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(milestoneLogic *logic.MilestoneLogic) *MilestoneHandler {
	return &MilestoneHandler{milestoneLogic: milestoneLogic}
}

// CreateMilestone 创建里程碑
func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	milestone, err := h.milestoneLogic.CreateMilestone(actor, uint(projectID),
		req.Title, req.Description, req.Amount, req.Deadline)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "里程碑创建成功", ToMilestoneResponse(milestone))
}

// ListMilestones 获取项目里程碑列表
func (h *MilestoneHandler) ListMilestones(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	milestones, err := h.milestoneLogic.ListMilestones(actor, uint(projectID))
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑列表成功", ToMilestoneResponseList(milestones))
}

// CompleteMilestone 交付验收回调，pending -> completed
func (h *MilestoneHandler) CompleteMilestone(c *gin.Context) {
	milestoneID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑ID")
		return
	}

	if err := h.milestoneLogic.MarkCompleted(uint(milestoneID)); err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "里程碑已验收", nil)
}

// ReleasePayment 释放里程碑款项
func (h *MilestoneHandler) ReleasePayment(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	milestoneID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑ID")
		return
	}

	payment, err := h.milestoneLogic.ReleasePayment(actor, uint(milestoneID))
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "放款成功", ToPaymentResponse(payment))
}
