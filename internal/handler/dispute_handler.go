package handler

import (
	"net/http"
	"strconv"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/gin-gonic/gin"
)

// DisputeHandler 争议处理器
type DisputeHandler struct {
	disputeLogic *logic.DisputeLogic
}

// NewDisputeHandler 创建争议处理器
func NewDisputeHandler(disputeLogic *logic.DisputeLogic) *DisputeHandler {
	return &DisputeHandler{disputeLogic: disputeLogic}
}

// OpenDispute 对支付发起争议
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的支付ID")
		return
	}

	var req OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	dispute, err := h.disputeLogic.OpenDispute(actor.ID, uint(paymentID), req.Reason)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "争议已受理", ToDisputeResponse(dispute))
}

// GetDispute 查询争议
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的争议ID")
		return
	}

	dispute, err := h.disputeLogic.GetDispute(uint(disputeID))
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取争议成功", ToDisputeResponse(dispute))
}

// ResolveDispute 管理员裁决争议
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的争议ID")
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	dispute, err := h.disputeLogic.ResolveDispute(actor, uint(disputeID),
		req.Resolution, req.RefundAmount, req.Reason)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "争议裁决完成", ToDisputeResponse(dispute))
}
