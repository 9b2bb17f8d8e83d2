package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/service"
	"class-attend/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendanceXLSX 导出考勤为 Excel
// GET /api/v1/export/attendance?class_id=xxx&from=...&to=...
func (h *ExportHandler) ExportAttendanceXLSX(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.AttendanceRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendanceXLSX(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportAttendanceCSV 导出考勤为 CSV
// GET /api/v1/export/attendance.csv?class_id=xxx&from=...&to=...
func (h *ExportHandler) ExportAttendanceCSV(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.AttendanceRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendanceCSV(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeCSV, filename, buf.Bytes())
}

// writeDownload 设置下载响应头并写入文件内容
func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRows):
		response.NotFound(c, 15001, "过滤范围内没有考勤记录")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrClassNotOwned):
		response.Forbidden(c, 12006, "班级不属于当前教师")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
