package handler

import (
	"net/http"
	"strconv"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/logic"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectLogic *logic.ProjectLogic) *ProjectHandler {
	return &ProjectHandler{projectLogic: projectLogic}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未认证")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	project, err := h.projectLogic.CreateProject(actor, req.Title, req.Description)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", project)
}

// AssignDeveloper 指派开发者
func (h *ProjectHandler) AssignDeveloper(c *gin.Context) {
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

	var req AssignDeveloperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	if err := h.projectLogic.AssignDeveloper(actor, uint(projectID), req.DeveloperID); err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "开发者指派成功", nil)
}

// CompleteProject 确认项目完成
func (h *ProjectHandler) CompleteProject(c *gin.Context) {
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

	if err := h.projectLogic.CompleteProject(actor, uint(projectID)); err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已完成", nil)
}

// CancelProject 取消项目
func (h *ProjectHandler) CancelProject(c *gin.Context) {
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

	if err := h.projectLogic.CancelProject(actor, uint(projectID)); err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已取消", nil)
}
