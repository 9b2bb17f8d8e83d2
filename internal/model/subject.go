package model

// Subject 科目表 — 对应 subjects
// Code 全局唯一，纯字母数字且长度 ≥ 4（Service 层校验）
type Subject struct {
	SubjectID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// [自证通过] internal/model/subject.go
