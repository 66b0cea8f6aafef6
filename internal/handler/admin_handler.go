package handler

import (
	"net/http"
	"strconv"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端处理器
type AdminHandler struct {
	auditLogic *logic.AuditLogic
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(auditLogic *logic.AuditLogic) *AdminHandler {
	return &AdminHandler{auditLogic: auditLogic}
}

// GetAdminLogs 查询审计日志
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}
	if !auth.IsAdministrator(actor) {
		ErrorResponse(c, http.StatusForbidden, "需要管理员权限")
		return
	}

	action := c.Query("action")
	adminID, _ := strconv.ParseUint(c.DefaultQuery("admin_id", "0"), 10, 32)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	entries, total, err := h.auditLogic.ListLogs(action, uint(adminID), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取审计日志成功", gin.H{
		"logs":       ToAdminLogResponseList(entries),
		"pagination": pagination,
	})
}
